package casefile_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/myrjola/coldcase/internal/casefile"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/myrjola/coldcase/internal/models"
	"github.com/stretchr/testify/require"
)

func sampleDocument(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile("samples/01-lighthouse.json")
	require.NoError(t, err)
	var document map[string]any
	require.NoError(t, json.Unmarshal(data, &document))
	return document
}

func encode(t *testing.T, document map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(document)
	require.NoError(t, err)
	return data
}

func TestImport(t *testing.T) {
	data := encode(t, sampleDocument(t))
	c, err := casefile.Import(data, casefile.FormatJSON)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(c.ID, "case-"))
	require.NotEqual(t, "case-lighthouse", c.ID, "imports get a fresh identity")
	require.Equal(t, "The Lighthouse Keeper's Ledger", c.Title)
	require.Equal(t, 1800, *c.TimeLimit)
	require.Len(t, c.Evidence, 6)

	again, err := casefile.Import(data, casefile.FormatJSON)
	require.NoError(t, err)
	require.NotEqual(t, c.ID, again.ID)
}

func TestImport_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(document map[string]any)
		wantMessage string
	}{
		{
			name:        "missing solution",
			mutate:      func(document map[string]any) { delete(document, "solution") },
			wantMessage: "solution is required",
		},
		{
			name:        "missing title",
			mutate:      func(document map[string]any) { delete(document, "title") },
			wantMessage: "title is required",
		},
		{
			name:        "missing people",
			mutate:      func(document map[string]any) { delete(document, "people") },
			wantMessage: "people is required",
		},
		{
			name: "unknown person type",
			mutate: func(document map[string]any) {
				document["people"].([]any)[1].(map[string]any)["type"] = "bystander"
			},
			wantMessage: "people[1].type must be one of [suspect witness]",
		},
		{
			name: "negative processing time",
			mutate: func(document map[string]any) {
				document["evidence"].([]any)[0].(map[string]any)["timeToProcess"] = -5
			},
			wantMessage: "evidence[0].timeToProcess must be at least 0",
		},
		{
			name: "analyzed without being collected",
			mutate: func(document map[string]any) {
				evidence := document["evidence"].([]any)[1].(map[string]any)
				evidence["analyzed"] = true
				evidence["collected"] = false
			},
			wantMessage: "evidence[1] is analyzed but not collected",
		},
		{
			name: "malformed contradiction reference",
			mutate: func(document map[string]any) {
				person := document["people"].([]any)[0].(map[string]any)
				person["contradictions"].([]any)[0].(map[string]any)["response1"] = "whereabouts"
			},
			wantMessage: "people[0].contradictions[0].response1 must look like <treeId>-<responseId>",
		},
		{
			name: "duplicate evidence id",
			mutate: func(document map[string]any) {
				document["evidence"].([]any)[1].(map[string]any)["id"] = "broken-lens"
			},
			wantMessage: `duplicate evidence id "broken-lens"`,
		},
		{
			name: "witness culprit",
			mutate: func(document map[string]any) {
				document["solution"].(map[string]any)["culprit"] = "tomas-berg"
			},
			wantMessage: `solution.culprit "tomas-berg" is not a suspect`,
		},
		{
			name: "unknown culprit",
			mutate: func(document map[string]any) {
				document["solution"].(map[string]any)["culprit"] = "nobody"
			},
			wantMessage: `solution.culprit "nobody" is not a person in the case`,
		},
		{
			name: "fractional age",
			mutate: func(document map[string]any) {
				document["people"].([]any)[0].(map[string]any)["age"] = 34.5
			},
			wantMessage: "malformed JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			document := sampleDocument(t)
			tt.mutate(document)
			c, err := casefile.Import(encode(t, document), casefile.FormatJSON)
			require.Nil(t, c)
			require.ErrorIs(t, err, casefile.ErrInvalidCase)
			require.Contains(t, err.Error(), tt.wantMessage)

			var validationErr *casefile.ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.NotEmpty(t, validationErr.Problems)
		})
	}
}

func TestImport_NotJSON(t *testing.T) {
	_, err := casefile.Import([]byte("{not json"), casefile.FormatJSON)
	require.ErrorIs(t, err, casefile.ErrInvalidCase)
	_, err = casefile.Import([]byte("- a\n- b\n"), casefile.FormatYAML)
	require.ErrorIs(t, err, casefile.ErrInvalidCase)
}

func TestImport_DefaultsProcessingTime(t *testing.T) {
	document := sampleDocument(t)
	delete(document["evidence"].([]any)[0].(map[string]any), "timeToProcess")
	c, err := casefile.Import(encode(t, document), casefile.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, casefile.DefaultTimeToProcess, c.Evidence[0].TimeToProcess)
	require.Equal(t, 15, c.Evidence[1].TimeToProcess)
}

func TestImportFile_YAML(t *testing.T) {
	c, err := casefile.ImportFile("testdata/minimal.yaml")
	require.NoError(t, err)
	require.Equal(t, "The Orchard Fire", c.Title)
	require.Nil(t, c.TimeLimit)
	require.Equal(t, models.PersonTypeSuspect, c.People[0].Type)
	require.Equal(t, "Everyone. I judged the pies.", c.People[0].DialogueTrees[0].Responses[0].Text)
	require.Equal(t, casefile.DefaultTimeToProcess, c.Evidence[0].TimeToProcess)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    casefile.Format
		wantErr bool
	}{
		{in: "", want: casefile.FormatJSON},
		{in: "JSON", want: casefile.FormatJSON},
		{in: "yml", want: casefile.FormatYAML},
		{in: "yaml", want: casefile.FormatYAML},
		{in: "toml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := casefile.ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
	require.Equal(t, casefile.FormatYAML, casefile.FormatFromPath("cases/orchard.YML"))
	require.Equal(t, casefile.FormatJSON, casefile.FormatFromPath("cases/orchard.json"))
}

func TestSamples(t *testing.T) {
	samples, err := casefile.Samples()
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, "case-lighthouse", samples[0].ID)
	require.Equal(t, "case-gallery", samples[1].ID)
	for _, c := range samples {
		require.NoError(t, casefile.Validate(&c))
		for _, e := range c.Evidence {
			require.Positive(t, e.TimeToProcess, e.ID)
		}
	}
}
