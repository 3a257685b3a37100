package meta

import (
	"testing"

	"github.com/mmcloughlin/take/torconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulated(t *testing.T) {
	assert.False(t, Populated())
}

func TestPlatformParses(t *testing.T) {
	p, err := torconfig.ParsePlatform(Platform.String())
	require.NoError(t, err)
	assert.Equal(t, "take", p.Software)
	assert.Equal(t, GitSHA, p.Version)
}
