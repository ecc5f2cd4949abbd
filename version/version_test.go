package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoShort(t *testing.T) {
	assert.Equal(t, "abcdef1", Info{CommitHash: "abcdef1234567"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestShortPrefersTag(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.0"
	assert.Equal(t, "v1.2.0", Short())
}

func TestString(t *testing.T) {
	s := Info{Version: "v1.0.0", CommitHash: "1234567890", BuildTime: "today", GoVersion: "go1.24", Platform: "linux/amd64"}.String()
	assert.Equal(t, "cashngo v1.0.0 (commit 1234567, built today, go1.24 linux/amd64)", s)
}
