package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-01", Version: "v1.2.0"}

	assert.Equal(t, "0123456", info.Short())
	assert.Equal(t, "gmsctl v1.2.0 (commit 0123456, built 2026-01-01)", info.String())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestUserAgent(t *testing.T) {
	assert.True(t, strings.HasPrefix(UserAgent(), "gmsctl/"))
}
