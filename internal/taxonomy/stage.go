package taxonomy

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage is one of the seven planning pipeline phases.
type Stage string

const (
	Stage1 Stage = "STAGE_1"
	Stage2 Stage = "STAGE_2"
	Stage3 Stage = "STAGE_3"
	Stage4 Stage = "STAGE_4"
	Stage5 Stage = "STAGE_5"
	Stage6 Stage = "STAGE_6"
	Stage7 Stage = "STAGE_7"
)

// DefaultStage is assigned when no stage keyword matches.
const DefaultStage = Stage1

// Stages maps filename keywords to stages in pipeline order.
var Stages = RuleTable[Stage]{
	{Stage1, []string{"intelligence", "ground", "reality", "input", "data", "initial", "survey", "information"}},
	{Stage2, []string{"risk", "assessment", "threat", "classified", "thinking", "priority"}},
	{Stage3, []string{"spatial", "gis", "map", "jurisdictional", "area", "boundary"}},
	{Stage4, []string{"route", "time", "window", "procession", "path", "movement"}},
	{Stage5, []string{"ghat", "terminal", "immersion", "river", "water", "safety"}},
	{Stage6, []string{"resource", "personnel", "allocation", "deployment", "staffing", "bandobast"}},
	{Stage7, []string{"output", "document", "final", "report", "outcome", "summary"}},
}

var stageLabels = map[Stage]string{
	Stage1: "Ground Inputs",
	Stage2: "Risk Thinking",
	Stage3: "GIS Mapping",
	Stage4: "Route & Time Planning",
	Stage5: "Terminal/Ghat Planning",
	Stage6: "Resource Planning",
	Stage7: "Outputs & Documentation",
}

// AllStages returns the stages in pipeline order.
func AllStages() []Stage {
	return []Stage{Stage1, Stage2, Stage3, Stage4, Stage5, Stage6, Stage7}
}

// Number returns the 1-based position of s, or 0 if s is not a stage.
func (s Stage) Number() int {
	n, err := strconv.Atoi(strings.TrimPrefix(string(s), "STAGE_"))
	if err != nil || n < 1 || n > 7 || !strings.HasPrefix(string(s), "STAGE_") {
		return 0
	}
	return n
}

// Label is the human-readable phase name.
func (s Stage) Label() string { return stageLabels[s] }

// ParseStage accepts "STAGE_3", "stage_3" or "3".
func ParseStage(v string) (Stage, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "STAGE_") {
		v = "STAGE_" + v
	}
	s := Stage(v)
	if s.Number() == 0 {
		return "", fmt.Errorf("unknown stage %q", v)
	}
	return s, nil
}
