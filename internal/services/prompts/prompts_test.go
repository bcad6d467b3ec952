package prompts

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpatgen/internal/domain"
)

func bigInput(issues int, descLen int) domain.AssessmentInput {
	in := domain.AssessmentInput{
		ID:   "a-123",
		Name: "Storefront audit",
		Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Stats: domain.IssueStats{
			BySeverity: map[domain.Severity]int{domain.SeverityHigh: issues},
		},
	}
	for i := 0; i < issues; i++ {
		in.Issues = append(in.Issues, domain.IssueRecord{
			ID:          fmt.Sprintf("i-%d", i),
			Title:       fmt.Sprintf("Issue %d", i),
			Description: strings.Repeat("x", descLen),
			Severity:    domain.SeverityHigh,
			Status:      "open",
			Criteria:    []string{"1.4.3"},
		})
	}
	return in
}

func TestMasterClampsIssuesAndDescriptions(t *testing.T) {
	in := bigInput(120, 2000)
	before := len(in.Issues)

	pair := Master(in)

	// Input is never mutated.
	require.Len(t, in.Issues, before)
	assert.Len(t, in.Issues[0].Description, 2000)

	// Issues beyond the cap never reach the prompt.
	assert.Contains(t, pair.User, fmt.Sprintf("i-%d", MasterIssueLimit-1))
	assert.NotContains(t, pair.User, fmt.Sprintf(`"i-%d"`, MasterIssueLimit))

	// Descriptions are cut at the cap with a marker.
	assert.NotContains(t, pair.User, strings.Repeat("x", MasterDescLimit+1))
	assert.Contains(t, pair.User, strings.Repeat("x", MasterDescLimit)+"…")
}

func TestPersonaUsesTighterBudget(t *testing.T) {
	in := bigInput(PersonaIssueLimit+10, PersonaDescLimit+100)

	pair := Persona(in, domain.PersonaScreenReaderUser)

	assert.Contains(t, pair.User, fmt.Sprintf("i-%d", PersonaIssueLimit-1))
	assert.NotContains(t, pair.User, fmt.Sprintf(`"i-%d"`, PersonaIssueLimit))
	assert.Contains(t, pair.User, strings.Repeat("x", PersonaDescLimit)+"…")
}

func TestPromptsAreDeterministic(t *testing.T) {
	in := bigInput(90, 900)

	first := Master(in)
	second := Master(in)
	assert.Equal(t, first, second)

	for _, p := range domain.AllPersonas {
		a := Persona(in, p)
		b := Persona(in, p)
		assert.Equal(t, a, b)
	}
}

func TestPersonaPromptMentionsPersona(t *testing.T) {
	in := bigInput(3, 50)

	for _, p := range domain.AllPersonas {
		pair := Persona(in, p)
		assert.Contains(t, pair.User, string(p))
		assert.Contains(t, pair.User, domain.PersonaLabel(p))
	}
}

func TestSystemInstructionForbidsInvention(t *testing.T) {
	pair := Master(bigInput(1, 10))
	assert.Contains(t, pair.System, "Never invent")
	assert.Contains(t, pair.System, "JSON")
}

func TestShortInputNotTruncated(t *testing.T) {
	in := bigInput(2, 40)

	pair := Master(in)

	assert.NotContains(t, pair.User, "…")
	assert.Contains(t, pair.User, strings.Repeat("x", 40))
}
