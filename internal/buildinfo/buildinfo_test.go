package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultVersion(t *testing.T) {
	require.NoError(t, Validate())
}

func TestValidateRejectsMalformedVersion(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	Version = "not-a-version"
	assert.Error(t, Validate())
}

func TestProfileMatchesDevToolsConstant(t *testing.T) {
	if DevTools {
		assert.Equal(t, "dev", Profile())
		return
	}
	assert.Equal(t, "release", Profile())
}
