package accounts

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStore(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeStore(t, "accounts.json",
		`[{"username":"a@b.c","password":"pw1"},{"username":"d@e.f","password":"pw2","proxy":"http://proxy:8080"}]`)

	accts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "a@b.c", accts[0].Key())
	assert.Equal(t, "http://proxy:8080", accts[1].Proxy)
}

func TestLoad_YAML(t *testing.T) {
	path := writeStore(t, "accounts.yaml", `
- username: a@b.c
  password: pw1
- username: d@e.f
  password: pw2
`)

	accts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "pw2", accts[1].Password)
}

func TestLoad_MissingFileWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrNoAccounts)

	data, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Contains(t, string(data), "Your Email")
}

func TestLoad_InvalidEmail(t *testing.T) {
	path := writeStore(t, "accounts.json", `[{"username":"not-an-email","password":"pw"}]`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLoad_Encrypted(t *testing.T) {
	t.Setenv(PassphraseEnv, "sesame")

	path := filepath.Join(t.TempDir(), "accounts.enc")
	want := []Account{{Username: "a@b.c", Password: "hunter2secret"}}
	require.NoError(t, WriteEncrypted(path, want, []byte("sesame")))

	// the envelope on disk must not expose the password
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2secret")

	accts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, accts)
}

func TestLoad_EncryptedWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.enc")
	require.NoError(t, WriteEncrypted(path, []Account{{Username: "a@b.c", Password: "pw"}}, []byte("right")))

	t.Setenv(PassphraseEnv, "wrong")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EncryptedPromptSeam(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("sesame"), nil }
	t.Cleanup(func() { readPassword = orig })

	path := filepath.Join(t.TempDir(), "accounts.enc")
	require.NoError(t, WriteEncrypted(path, []Account{{Username: "a@b.c", Password: "pw"}}, []byte("sesame")))

	accts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, accts, 1)
}

func TestShuffle_Permutes(t *testing.T) {
	accts := make([]Account, 20)
	for i := range accts {
		accts[i] = Account{Username: string(rune('a'+i)) + "@b.c"}
	}

	keys := func(as []Account) []string {
		out := make([]string, len(as))
		for i, a := range as {
			out[i] = a.Username
		}
		return out
	}

	before := keys(accts)
	Shuffle(accts)
	after := keys(accts)

	sortedBefore := append([]string(nil), before...)
	sortedAfter := append([]string(nil), after...)
	sort.Strings(sortedBefore)
	sort.Strings(sortedAfter)
	assert.Equal(t, sortedBefore, sortedAfter)
}
