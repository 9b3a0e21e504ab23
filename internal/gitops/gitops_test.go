package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInitAndIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")

	sub := filepath.Join(dir, "books")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.True(t, IsRepo(sub), "subdirectories are inside the work tree")
}

func TestCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	ledger := filepath.Join(dir, "expenses.csv")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(ledger, []byte("Name,Amount,Category,Date\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("unrelated"), 0o644))

	hash, err := Commit(dir, "tally: init", testAuthor, ledger)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.Contains(t, gitLog(t, dir, "%s"), "tally: init")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "Test Author <test@example.com>")

	// Only the named path is committed.
	status := exec.Command("git", "status", "--porcelain", "--", other)
	status.Dir = dir
	out, err := status.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "?? notes.txt")
}

func TestCommit_NothingChanged(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	ledger := filepath.Join(dir, "expenses.csv")
	require.NoError(t, os.WriteFile(ledger, []byte("Name,Amount,Category,Date\n"), 0o644))
	_, err := Commit(dir, "first", testAuthor, ledger)
	require.NoError(t, err)

	hash, err := Commit(dir, "second", testAuthor, ledger)
	require.NoError(t, err)
	assert.Empty(t, hash)
	assert.Contains(t, gitLog(t, dir, "%s"), "first")
}
