package seen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAndUnseen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seen.yaml")
	s := Open(path)

	unseen, err := s.Unseen("student@college.edu", []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, unseen)

	require.NoError(t, s.Mark("Student@College.edu ", 1, 3))
	require.NoError(t, s.Mark("student@college.edu", 3))

	unseen, err = s.Unseen("student@college.edu", []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, unseen)

	other, err := s.Seen("head@college.edu")
	require.NoError(t, err)
	assert.Empty(t, other)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "users:\n    student@college.edu:\n        - 1\n        - 3\n", string(data))
}

func TestStoresShareFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.yaml")

	require.NoError(t, Open(path).Mark("a@college.edu", 1))
	require.NoError(t, Open(path).Mark("b@college.edu", 2))

	seen, err := Open(path).Seen("a@college.edu")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, seen)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [\n"), 0o644))

	_, err := Open(path).Seen("a@college.edu")
	assert.ErrorContains(t, err, "parse seen forms")
}
