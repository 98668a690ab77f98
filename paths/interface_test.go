package paths_test

import (
	"testing"

	"code.meridianbank.io/meridian-go/paths"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	t.Run("An empty home resolves to the standard platform directories", testNewPathsEmptyHomeResolvesToStandardPlatformDirectories)
	t.Run("A custom home resolves to paths rooted under it", testNewPathsCustomHomeResolvesToPathsRootedUnderIt)
}

func testNewPathsEmptyHomeResolvesToStandardPlatformDirectories(t *testing.T) {
	p := paths.New("")

	assert.IsType(t, &paths.DefaultPaths{}, p)
}

func testNewPathsCustomHomeResolvesToPathsRootedUnderIt(t *testing.T) {
	// given
	home := t.TempDir()

	// when
	p := paths.New(home)

	// then
	require.IsType(t, &paths.CustomPaths{}, p)
	assert.Equal(t, home, p.(*paths.CustomPaths).CustomHome)
}
