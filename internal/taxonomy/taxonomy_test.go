package taxonomy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTableFirstMatchWins(t *testing.T) {
	table := RuleTable[string]{
		{"first", []string{"alpha"}},
		{"second", []string{"alpha", "beta"}},
	}

	got, ok := table.Match("ALPHA beta")
	require.True(t, ok)
	assert.Equal(t, "first", got)

	got, ok = table.Match("only beta")
	require.True(t, ok)
	assert.Equal(t, "second", got)

	_, ok = table.Match("gamma")
	assert.False(t, ok)
	assert.Equal(t, "none", table.MatchOr("gamma", "none"))
}

func TestRuleIgnoresEmptyKeyword(t *testing.T) {
	r := Rule[int]{Result: 1, Keywords: []string{""}}
	assert.False(t, r.Matches("anything"))
}

func TestCategoryPriority(t *testing.T) {
	got := Categories.MatchOr("PS Pack Final Report.pdf", CategoryOther)
	assert.Equal(t, CategoryPSPack, got)
}

func TestJurisdictionSentinel(t *testing.T) {
	assert.False(t, Unclassified.IsClassified())
	assert.True(t, Adgaon.IsClassified())
	assert.Equal(t, CityWideName, Unclassified.String())

	b, err := json.Marshal(struct {
		PS Jurisdiction `json:"ps"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ps":"Nashik City"}`, string(b))

	var back struct {
		PS Jurisdiction `json:"ps"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Unclassified, back.PS)
}

func TestParseJurisdiction(t *testing.T) {
	tests := []struct {
		in   string
		want Jurisdiction
	}{
		{"Panchavati Police Station", Panchavati},
		{"nashik road", NashikRoad},
		{"Nashik City", Unclassified},
		{"", Unclassified},
		{"Gangapur PS", Gangapur},
		{"Cidco", Jurisdiction("Cidco")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseJurisdiction(tt.in), tt.in)
	}
}

func TestStages(t *testing.T) {
	assert.Len(t, AllStages(), 7)
	for i, s := range AllStages() {
		assert.Equal(t, i+1, s.Number())
		assert.NotEmpty(t, s.Label())
	}
	assert.Equal(t, 0, Stage("STAGE_9").Number())
	assert.Equal(t, 0, Stage("bogus").Number())

	s, err := ParseStage("3")
	require.NoError(t, err)
	assert.Equal(t, Stage3, s)

	s, err = ParseStage("stage_7")
	require.NoError(t, err)
	assert.Equal(t, Stage7, s)

	_, err = ParseStage("STAGE_0")
	assert.Error(t, err)
}

func TestParseRiskTier(t *testing.T) {
	r, err := ParseRiskTier(" high ")
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, r)
	assert.Equal(t, "high", r.Key())

	_, err = ParseRiskTier("extreme")
	assert.Error(t, err)
}
