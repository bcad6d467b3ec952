package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpatgen/internal/domain"
)

func validReport() domain.Report {
	rep := domain.Report{
		AssessmentID: "a-1",
		ExecutiveSummary: domain.ExecutiveSummary{
			Overview:        "The assessment found a small number of high-impact issues.",
			TopRisks:        []string{"Contrast failures block reading", "Forms lack labels"},
			QuickWins:       []string{"Fix alt text", "Label the search field"},
			EstimatedImpact: domain.ImpactHigh,
		},
	}
	for _, p := range domain.AllPersonas {
		rep.Personas = append(rep.Personas, domain.PersonaSummary{
			Persona: p,
			Summary: "Short summary for " + string(p) + ".",
		})
	}
	return rep
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestValidateReportAccepts(t *testing.T) {
	rep, err := ValidateReport(mustJSON(t, validReport()), RequireAllPersonas)
	require.NoError(t, err)
	assert.Len(t, rep.Personas, len(domain.AllPersonas))
}

func TestValidateReportOverviewWordLimit(t *testing.T) {
	in := validReport()
	in.ExecutiveSummary.Overview = strings.Repeat("word ", OverviewWordLimit+1)

	_, err := ValidateReport(mustJSON(t, in), RequireAllPersonas)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "executive_summary.overview", ve.Field)
	assert.Contains(t, ve.Constraint, "121 words")
}

func TestValidateReportListBounds(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		in := validReport()
		in.ExecutiveSummary.TopRisks = nil
		for i := 0; i < n; i++ {
			in.ExecutiveSummary.TopRisks = append(in.ExecutiveSummary.TopRisks, fmt.Sprintf("risk %d", i))
		}

		_, err := ValidateReport(mustJSON(t, in), RequireAllPersonas)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "n=%d", n)
		assert.Equal(t, "executive_summary.top_risks", ve.Field)
	}
}

func TestValidateReportImpactEnum(t *testing.T) {
	in := validReport()
	in.ExecutiveSummary.EstimatedImpact = "Catastrophic"

	_, err := ValidateReport(mustJSON(t, in), RequireAllPersonas)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "executive_summary.estimated_impact", ve.Field)
}

func TestValidateReportMissingPersona(t *testing.T) {
	in := validReport()
	in.Personas = in.Personas[:len(in.Personas)-1]

	_, err := ValidateReport(mustJSON(t, in), RequireAllPersonas)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Constraint, string(domain.PersonaComplianceOfficer))
}

func TestValidateReportUnknownPersona(t *testing.T) {
	in := validReport()
	in.Personas[0].Persona = "project_manager"

	_, err := ValidateReport(mustJSON(t, in), RequireAllPersonas)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Field, "personas[0]")
}

func TestValidateReportExecutiveOnlyIgnoresPersonas(t *testing.T) {
	in := validReport()
	in.Personas = nil

	rep, err := ValidateReport(mustJSON(t, in), ExecutiveOnly)
	require.NoError(t, err)
	assert.Empty(t, rep.Personas)
}

func TestValidateReportMalformedObject(t *testing.T) {
	_, err := ValidateReport(json.RawMessage(`[1,2,3]`), RequireAllPersonas)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "report", ve.Field)
}

func TestValidatePersonaSummary(t *testing.T) {
	ok := domain.PersonaSummary{Persona: domain.PersonaLowVisionUser, Summary: "Fine."}
	ps, err := ValidatePersonaSummary(mustJSON(t, ok), domain.PersonaLowVisionUser)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaLowVisionUser, ps.Persona)

	// Wrong persona answered.
	_, err = ValidatePersonaSummary(mustJSON(t, ok), domain.PersonaCognitiveUser)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "persona_summary.persona", ve.Field)

	// Over the word ceiling.
	long := domain.PersonaSummary{Persona: domain.PersonaLowVisionUser, Summary: strings.Repeat("w ", SummaryWordLimit+1)}
	_, err = ValidatePersonaSummary(mustJSON(t, long), domain.PersonaLowVisionUser)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "persona_summary.summary", ve.Field)
}
