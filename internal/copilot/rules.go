package copilot

import "strings"

// DefaultReply is sent when no rule matches.
const DefaultReply = "I analyze bandobast data. Ask me to show units, highlight risks, or compare years."

// Rule is one intent. Match receives the lower-cased message.
type Rule struct {
	Name   string
	Match  func(msg string) bool
	Text   string
	Action func() *MapAction
}

func containsAll(words ...string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if !strings.Contains(msg, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}

func both(a, b func(string) bool) func(string) bool {
	return func(msg string) bool { return a(msg) && b(msg) }
}

// DefaultRules is evaluated in order; the first match answers.
var DefaultRules = []Rule{
	{
		Name:  "high-risk-adgaon",
		Match: containsAll("high risk", "adgaon"),
		Text: "I've filtered the map to show only **HIGH Risk** units under **Adgaon Police Station**. \n\n" +
			"Found 3 critical units: \n" +
			"1. **Sarvajanik Mitra Mandal** (Crowd: 8k)\n" +
			"2. **Adgaon Naka Group** (History of disputes)\n" +
			"3. **Market Yard Mandal** (Traffic sensitive)",
		Action: func() *MapAction {
			return &MapAction{Type: ActionFilter, Payload: map[string]any{"riskTier": "HIGH", "psName": "Adgaon"}}
		},
	},
	{
		Name:  "bhadrakali-radius",
		Match: containsAll("bhadrakali", "1km"),
		Text: "Highlighting a **1km radius** around **Bhadrakali Ghat**. \n\n" +
			"There are **12 event units** in this zone, with 2 overlapping procession routes between 18:00-19:00. " +
			"Recommendation: Deploy 2 extra QRT teams at the boundary.",
		Action: func() *MapAction {
			return &MapAction{Type: ActionHighlightZone, Payload: map[string]any{
				"lat":    19.9975,
				"lng":    73.7898,
				"radius": 1000,
				"label":  "Bhadrakali Safety Zone",
			}}
		},
	},
	{
		Name:  "compare-years",
		Match: containsAll("compare", "2022", "2024"),
		Text: "Comparing **2022 vs 2024**: \n\n" +
			"- **Crowd**: +15% increase in 2024 (4.8L vs 4.0L)\n" +
			"- **Incidents**: +1 reported (3 vs 2)\n" +
			"- **Resource Efficiency**: Improved. Per-capita police ratio dropped but incident response time improved by 12%.",
	},
	{
		Name:  "evening-routes",
		Match: both(containsAll("route"), containsAny("6pm", "18:00")),
		Text: "Showing routes active between **18:00 - 21:00**. \n\n" +
			"Detected **Critical Overlap** at **Panchavati Chowk** where Route A and Route B merge. \n\n" +
			"Displayed on map in **Red**.",
		Action: func() *MapAction {
			return &MapAction{Type: ActionShowRoutesTime, Payload: map[string]any{
				"timeStart":        "18:00",
				"timeEnd":          "21:00",
				"highlightOverlap": true,
			}}
		},
	},
	{
		Name:  "reset",
		Match: containsAny("reset", "clear"),
		Text:  "Resetting map view to default.",
		Action: func() *MapAction {
			return &MapAction{Type: ActionReset, Payload: map[string]any{}}
		},
	},
	{
		Name:  "high-risk",
		Match: containsAll("high risk"),
		Text:  "Filtering map to show **ALL High Risk** units across the city.",
		Action: func() *MapAction {
			return &MapAction{Type: ActionFilter, Payload: map[string]any{"riskTier": "HIGH"}}
		},
	},
}
