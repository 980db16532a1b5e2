package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/notemover/internal/cli"
	"github.com/macropower/notemover/pkg/rule"
	"github.com/macropower/notemover/pkg/scan"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err      error
		want     string
		wantHint string
	}{
		"plain error": {
			err:  errors.New("boom"),
			want: "boom\n",
		},
		"scan in progress": {
			err:      fmt.Errorf("%w (lock: /tmp/scan.lock)", scan.ErrScanInProgress),
			want:     "another scan is in progress (lock: /tmp/scan.lock)\n",
			wantHint: "Wait for the running scan to finish",
		},
		"rule index": {
			err:      fmt.Errorf("%w: 4 (have 1 rules)", rule.ErrIndexOutOfRange),
			want:     "rule index out of range: 4 (have 1 rules)\n",
			wantHint: "indices start at 0",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			cli.ErrorHandler(&buf, fang.Styles{}, tc.err)

			if tc.wantHint == "" {
				assert.Equal(t, tc.want, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tc.want)
			assert.Contains(t, buf.String(), tc.wantHint)
		})
	}
}
