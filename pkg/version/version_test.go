package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/notemover/pkg/version"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, version.GetVersion())
	assert.NotEmpty(t, version.Revision)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := version.Info()
	assert.Contains(t, info, version.GetVersion())
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}
