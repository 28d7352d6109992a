package longevity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentities(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{
		"Ann Example|ann@example.com|ann@old.example.com",
		"Bob",
	})

	require.Equal(t, 2, ids.Count())
	assert.Equal(t, "Ann Example", ids.Name(0))
	assert.Equal(t, "Bob", ids.Name(1))
}

func TestIdentitiesMatchByEmail(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{"Ann|ann@example.com|ann@old.example.com"})

	idx, ok := ids.Match("whatever", "ann@old.example.com")

	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestIdentitiesMatchByNameFallback(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{"Ann|ann@example.com"})

	idx, ok := ids.Match("Ann", "unknown@example.com")

	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestIdentitiesMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{"Ann|Ann@Example.com"})

	_, ok := ids.Match("", "ANN@EXAMPLE.COM")

	assert.True(t, ok)
}

func TestIdentitiesNoMatch(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{"Ann|ann@example.com"})

	_, ok := ids.Match("Bob", "bob@example.com")

	assert.False(t, ok)
}

func TestNilIdentities(t *testing.T) {
	t.Parallel()

	var ids *Identities

	assert.Equal(t, 0, ids.Count())

	_, ok := ids.Match("Ann", "ann@example.com")
	assert.False(t, ok)
}

func TestParseIdentitiesSkipsBlankEntries(t *testing.T) {
	t.Parallel()

	ids := ParseIdentities([]string{"", "  ", "Ann|ann@example.com"})

	assert.Equal(t, 1, ids.Count())
}

func TestLoadIdentities(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.txt")
	content := "# tracked authors\nAnn|ann@example.com\n\nBob|bob@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ids, err := LoadIdentities(path)

	require.NoError(t, err)
	require.Equal(t, 2, ids.Count())
	assert.Equal(t, "Ann", ids.Name(0))
	assert.Equal(t, "Bob", ids.Name(1))
}

func TestLoadIdentitiesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadIdentities(filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
}
