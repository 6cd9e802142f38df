package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledge_AllKnownLabelsCovered(t *testing.T) {
	for _, label := range Labels() {
		findings := FindingsFor(label)
		recs := RecommendationsFor(label)
		plan := ManagementFor(label)

		assert.NotEmpty(t, findings, "findings for %q", label)
		assert.NotEmpty(t, recs, "recommendations for %q", label)
		assert.False(t, plan.IsZero(), "management plan for %q", label)
		assert.NotEmpty(t, plan.Immediate, "immediate actions for %q", label)
		assert.NotEmpty(t, plan.LongTerm, "long-term plan for %q", label)
		for _, f := range findings {
			assert.NotEmpty(t, f.Text)
		}
	}
}

func TestKnowledge_UnknownLabelYieldsEmpty(t *testing.T) {
	for _, label := range []string{"", "osteosarcoma", ErrorLabel, "  "} {
		assert.Empty(t, FindingsFor(label), "findings for %q", label)
		assert.Empty(t, RecommendationsFor(label), "recommendations for %q", label)
		assert.True(t, ManagementFor(label).IsZero(), "management for %q", label)
	}
}

func TestKnowledge_LookupIsCaseAndSpacingInsensitive(t *testing.T) {
	want := FindingsFor("radicular cyst")
	require.NotEmpty(t, want)

	assert.Equal(t, want, FindingsFor("Radicular Cyst"))
	assert.Equal(t, want, FindingsFor("  RADICULAR   CYST  "))
	assert.Equal(t, ManagementFor("periapical abcess"), ManagementFor("Periapical Abcess"))
}

func TestKnowledge_LookupsReturnCopies(t *testing.T) {
	first := FindingsFor("pericoronitis")
	require.NotEmpty(t, first)
	first[0].Text = "mutated"

	again := FindingsFor("pericoronitis")
	assert.NotEqual(t, "mutated", again[0].Text)

	plan := ManagementFor("pericoronitis")
	plan.Immediate[0] = "mutated"
	assert.NotEqual(t, "mutated", ManagementFor("pericoronitis").Immediate[0])
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nil control", "nil control"},
		{"  Periapical   Widening ", "periapical widening"},
		{"", ""},
		{"   ", ""},
		{"ＤＩＦＦＵＳＥ ｌｅｓｉｏｎ", "diffuse lesion"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in), "normalizeLabel(%q)", tt.in)
	}
}
