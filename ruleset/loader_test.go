package ruleset_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/wincond/ruleset"
)

const sampleYAML = `
rules:
  - name: terminals
    match: 'class_g = "XTerm"'
    opacity: 90
  - name: dialogs
    match: 'window_type = "dialog"'
    shadow: false
`

func TestParseRuleset(t *testing.T) {
	t.Parallel()
	rules, err := ruleset.Parse([]byte(sampleYAML), "sample.yaml")
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "terminals", rules[0].Name)
	assert.Equal(t, `class_g = "XTerm"`, rules[0].Condition.String())

	want := map[string]any{"opacity": 90}
	if diff := cmp.Diff(want, rules[0].RawData); diff != "" {
		t.Errorf("RawData mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "dialogs", rules[1].Name)
	assert.Equal(t, false, rules[1].RawData["shadow"])
}

func TestParseRulesetReportsBadRuleButKeepsGoodOnes(t *testing.T) {
	t.Parallel()
	const mixed = `
rules:
  - name: good
    match: 'fullscreen'
  - name: bad
    match: 'argb = "nope"'
`
	rules, err := ruleset.Parse([]byte(mixed), "mixed.yaml")
	require.Error(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "good", rules[0].Name)
}

func TestMergeOrdersLaterGroupsLast(t *testing.T) {
	t.Parallel()
	a, err := ruleset.Parse([]byte(`rules: [{name: a, match: "fullscreen"}]`), "a.yaml")
	require.NoError(t, err)
	b, err := ruleset.Parse([]byte(`rules: [{name: b, match: "focused"}]`), "b.yaml")
	require.NoError(t, err)

	merged := ruleset.Merge(a, b)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Name)
	assert.Equal(t, "b", merged[1].Name)
}
