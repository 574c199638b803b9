package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProject = `{
  "title": "My New Home",
  "project_type": "Residential (Single-family)",
  "site": {"width": 12, "height": 18},
  "required_spaces": [{"name": "Living", "min_area": 20}, {"name": "Kitchen", "min_area": 12}],
  "adjacency_notes": null,
  "orientation_notes": "Living to face North",
  "cultural_tuning": "General Vastu",
  "municipal_code": "BBMP"
}`

func TestProjectValid(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	assert.NoError(t, v.Project([]byte(validProject)))
}

func TestProjectInvalid(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    string
		wantLoc string
	}{
		{"malformed", `{"title":`, "malformed JSON"},
		{"not an object", `[]`, "/"},
		{"empty title", strings.Replace(validProject, `"My New Home"`, `""`, 1), "/title"},
		{"zero width", strings.Replace(validProject, `"width": 12`, `"width": 0`, 1), "/site/width"},
		{"string height", strings.Replace(validProject, `"height": 18`, `"height": "18"`, 1), "/site/height"},
		{"no spaces", strings.Replace(validProject,
			`[{"name": "Living", "min_area": 20}, {"name": "Kitchen", "min_area": 12}]`, `[]`, 1), "/required_spaces"},
		{"negative area", strings.Replace(validProject, `"min_area": 12`, `"min_area": -1`, 1), "/required_spaces/1/min_area"},
		{"missing municipal", strings.Replace(validProject, `"municipal_code": "BBMP"`, `"x": 1`, 1), "/"},
		{"numeric notes", strings.Replace(validProject, `"adjacency_notes": null`, `"adjacency_notes": 5`, 1), "/adjacency_notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Project([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantLoc)
		})
	}
}

func TestGenerate(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	assert.NoError(t, v.Generate(nil))
	assert.NoError(t, v.Generate([]byte("  \n")))
	assert.NoError(t, v.Generate([]byte(`{}`)))
	assert.NoError(t, v.Generate([]byte(`{"alternatives": 4}`)))
	assert.NoError(t, v.Generate([]byte(`{"alternatives": 12}`)))

	for _, body := range []string{
		`{"alternatives": 0}`,
		`{"alternatives": 13}`,
		`{"alternatives": 2.5}`,
		`{"alternatives": "4"}`,
		`"4"`,
		`{`,
	} {
		err := v.Generate([]byte(body))
		assert.ErrorIs(t, err, ErrInvalid, body)
	}
}
