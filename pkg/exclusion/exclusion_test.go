package exclusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/notemover/pkg/exclusion"
)

func TestIsExcluded(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		container string
		list      exclusion.List
		useRegex  bool
		want      bool
	}{
		"empty list": {
			container: "Inbox",
			want:      false,
		},
		"blank entry ignored": {
			container: "/",
			list:      exclusion.List{{Container: ""}},
			want:      false,
		},
		"literal equal": {
			container: "Templates",
			list:      exclusion.List{{Container: "Templates/"}},
			want:      true,
		},
		"literal is not recursive": {
			container: "Templates/Daily",
			list:      exclusion.List{{Container: "Templates"}},
			want:      false,
		},
		"literal root": {
			container: "/",
			list:      exclusion.List{{Container: "/"}},
			want:      true,
		},
		"regex prefix": {
			container: "Templates/Daily",
			list:      exclusion.List{{Container: "^Templates"}},
			useRegex:  true,
			want:      true,
		},
		"invalid regex skipped": {
			container: "Archive",
			list:      exclusion.List{{Container: "(broken"}, {Container: "^Arch"}},
			useRegex:  true,
			want:      true,
		},
		"invalid regex alone": {
			container: "(broken",
			list:      exclusion.List{{Container: "(broken"}},
			useRegex:  true,
			want:      false,
		},
		"regex disabled treats source literally": {
			container: "Archive",
			list:      exclusion.List{{Container: "^Arch"}},
			want:      false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, exclusion.IsExcluded(tc.container, tc.list, tc.useRegex))
		})
	}
}

func TestList_Edits(t *testing.T) {
	t.Parallel()

	base := exclusion.List{{Container: "A"}, {Container: "B"}}

	added := base.Append("C")
	assert.Equal(t, []string{"A", "B", "C"}, added.Containers())
	assert.Equal(t, []string{"A", "B"}, base.Containers())

	removed, err := base.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, removed.Containers())
	assert.Equal(t, []string{"A", "B"}, base.Containers())

	_, err = base.Delete(2)
	require.ErrorIs(t, err, exclusion.ErrIndexOutOfRange)
}
