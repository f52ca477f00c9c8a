package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionIncludesBuildMetadata(t *testing.T) {
	oldV, oldC, oldD := version, commitSHA, buildDate
	t.Cleanup(func() { version, commitSHA, buildDate = oldV, oldC, oldD })

	version, commitSHA, buildDate = "1.2.0", "abc123", "2026-01-02"
	assert.Equal(t, "1.2.0+abc123 (2026-01-02)", Version())
	assert.True(t, strings.HasPrefix(UserAgent(), "eeclientgen/1.2.0 ("))
}

func TestVersionDefaultsToDev(t *testing.T) {
	oldV, oldC, oldD := version, commitSHA, buildDate
	t.Cleanup(func() { version, commitSHA, buildDate = oldV, oldC, oldD })

	version, commitSHA, buildDate = "dev", "", ""
	assert.Equal(t, "dev", Version())
}
