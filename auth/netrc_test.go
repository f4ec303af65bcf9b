package auth

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNetrc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netrc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStoreLookupFromFile(t *testing.T) {
	path := writeNetrc(t, "machine urs.earthdata.nasa.gov\nlogin jdoe\npassword hunter2\n")

	store := &Store{Path: path}
	cred, err := store.Lookup("urs.earthdata.nasa.gov")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", cred.Login)
	assert.Equal(t, "hunter2", cred.Password)
	assert.Equal(t, "urs.earthdata.nasa.gov", cred.Host)
}

func TestStoreLookupFallsBackToPrompt(t *testing.T) {
	path := writeNetrc(t, "machine example.com\nlogin other\npassword pw\n")

	store := &Store{
		Path: path,
		In:   strings.NewReader("jdoe\nhunter2\n"),
		Out:  io.Discard,
	}
	cred, err := store.Lookup("urs.earthdata.nasa.gov")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", cred.Login)
	assert.Equal(t, "hunter2", cred.Password)
}

func TestStoreLookupMissingFilePrompts(t *testing.T) {
	store := &Store{
		Path: filepath.Join(t.TempDir(), "absent"),
		In:   strings.NewReader("jdoe\nhunter2\n"),
		Out:  io.Discard,
	}
	cred, err := store.Lookup("urs.earthdata.nasa.gov")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", cred.Login)
}

func TestStoreLookupNoInputFails(t *testing.T) {
	store := &Store{
		Path: filepath.Join(t.TempDir(), "absent"),
		In:   strings.NewReader(""),
		Out:  io.Discard,
	}
	_, err := store.Lookup("urs.earthdata.nasa.gov")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCredentials))
}

func TestStorePersistWritesNetrc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netrc")

	store := &Store{
		Path:    path,
		Persist: true,
		In:      strings.NewReader("jdoe\nhunter2\n"),
		Out:     io.Discard,
	}
	_, err := store.Lookup("urs.earthdata.nasa.gov")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second lookup reads the persisted entry without prompting.
	again := &Store{Path: path}
	cred, err := again.Lookup("urs.earthdata.nasa.gov")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", cred.Login)
	assert.Equal(t, "hunter2", cred.Password)
}
