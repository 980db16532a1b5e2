package yaml_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/pkg/yaml"
)

const rulesSchema = `{
	"type": "object",
	"properties": {
		"trigger_mode": {"type": "string", "enum": ["Automatic", "Manual"]},
		"rules": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"destination": {"type": "string"},
					"tags": {"type": "array", "items": {"type": "string"}},
					"tagMatchMode": {"type": "string", "enum": ["any", "all"]}
				},
				"required": ["destination"]
			}
		}
	},
	"required": ["trigger_mode"]
}`

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		schema  string
		errMsg  string
		wantErr bool
	}{
		"valid schema":   {schema: rulesSchema},
		"empty schema":   {schema: `{}`},
		"invalid json":   {schema: `{"type": nope}`, wantErr: true, errMsg: "unmarshal schema"},
		"invalid schema": {schema: `{"type": "invalid_type"}`, wantErr: true, errMsg: "compile schema"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := yaml.NewValidator("test.json", []byte(tc.schema))
			if tc.wantErr {
				require.ErrorContains(t, err, tc.errMsg)
				assert.Nil(t, v)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	v := yaml.MustNewValidator("test.json", []byte(rulesSchema))

	tcs := map[string]struct {
		data     any
		wantPath string
		wantErr  bool
	}{
		"valid": {
			data: map[string]any{
				"trigger_mode": "Manual",
				"rules": []any{
					map[string]any{"destination": "Meetings", "tags": []any{"#meeting"}},
				},
			},
		},
		"missing required root field": {
			data:     map[string]any{},
			wantErr:  true,
			wantPath: "$",
		},
		"bad enum": {
			data:     map[string]any{"trigger_mode": "Sometimes"},
			wantErr:  true,
			wantPath: "$.trigger_mode",
		},
		"missing destination in second rule": {
			data: map[string]any{
				"trigger_mode": "Automatic",
				"rules": []any{
					map[string]any{"destination": "A"},
					map[string]any{"tags": []any{"#b"}},
				},
			},
			wantErr:  true,
			wantPath: "$.rules[1]",
		},
		"bad tag type": {
			data: map[string]any{
				"trigger_mode": "Automatic",
				"rules": []any{
					map[string]any{"destination": "A", "tags": []any{"#a", 7}},
				},
			},
			wantErr:  true,
			wantPath: "$.rules[0].tags[1]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(tc.data)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			require.NotNil(t, yamlErr.Path)
			assert.Equal(t, tc.wantPath, yamlErr.Path.String())
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	path := yaml.NewPathBuilder().Root().Child("rules").Index(0).Child("destination").Build()

	tcs := map[string]struct {
		err  *yaml.Error
		want string
	}{
		"plain": {
			err:  yaml.NewError(errors.New("boom")),
			want: "boom",
		},
		"path without source": {
			err:  yaml.NewError(errors.New("required"), yaml.WithPath(path)),
			want: "error at $.rules[0].destination: required",
		},
		"nil error": {
			err:  &yaml.Error{},
			want: "",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestError_AnnotatesSource(t *testing.T) {
	t.Parallel()

	src := []byte("trigger_mode: Automatic\nrules:\n  - destination: Meetings\n    tagMatchMode: some\n")
	path := yaml.NewPathBuilder().Root().Child("rules").Index(0).Child("tagMatchMode").Build()

	err := yaml.NewError(errors.New("value must be one of any, all"),
		yaml.WithPath(path),
		yaml.WithSource(src),
	)

	msg := err.Error()
	assert.Contains(t, msg, "[4:")
	assert.Contains(t, msg, "value must be one of any, all")
	assert.Contains(t, msg, "tagMatchMode: some")
}

func TestDecoder_SyntaxError(t *testing.T) {
	t.Parallel()

	var out map[string]any

	err := yaml.Unmarshal([]byte("rules: [\n"), &out)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.NotNil(t, yamlErr.Token)
}
