package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/pkg/pattern"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src     string
		wantErr bool
	}{
		"literal":          {src: "meeting"},
		"anchored":         {src: "^#project/.+$"},
		"lookahead":        {src: "^(?=.*2024).*$"},
		"unclosed group":   {src: "(unclosed", wantErr: true},
		"dangling bracket": {src: "[abc", wantErr: true},
		"blank":            {src: "   ", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := pattern.Compile(tc.src)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, p)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.src, p.String())
		})
	}
}

func TestPattern_MatchString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src   string
		input string
		want  bool
	}{
		"substring match": {src: "meet", input: "#meeting", want: true},
		"anchored miss":   {src: "^meet", input: "#meeting", want: false},
		"digit class":     {src: `^\d{4}-\d{2}-\d{2}$`, input: "2024-01-31", want: true},
		"lookahead":       {src: "^(?=.*draft)", input: "my draft note", want: true},
		"case sensitive":  {src: "Meeting", input: "meeting", want: false},
		"case flag":       {src: "(?i)Meeting", input: "meeting", want: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := pattern.Compile(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.MatchString(tc.input))
		})
	}
}

func TestPattern_MatchAny(t *testing.T) {
	t.Parallel()

	p, err := pattern.Compile("^#work")
	require.NoError(t, err)

	assert.True(t, p.MatchAny([]string{"#home", "#work/project"}))
	assert.False(t, p.MatchAny([]string{"#home"}))
	assert.False(t, p.MatchAny(nil))
}
