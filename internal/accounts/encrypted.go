package accounts

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/pointsfarmer/internal/cryptox"
	"github.com/dmitrijs2005/pointsfarmer/internal/filex"
)

// PassphraseEnv names the environment variable consulted before falling
// back to an interactive prompt.
const PassphraseEnv = "FARMER_PASSPHRASE"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func passphrase() ([]byte, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return []byte(p), nil
	}

	fmt.Fprint(os.Stderr, "Account store passphrase: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}

	return pw, nil
}

func decryptStore(data []byte) ([]Account, error) {
	var env cryptox.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	pw, err := passphrase()
	if err != nil {
		return nil, err
	}

	plaintext, err := env.Open(pw)
	if err != nil {
		return nil, err
	}

	var accts []Account
	if err := json.Unmarshal(plaintext, &accts); err != nil {
		return nil, fmt.Errorf("parse accounts: %w", err)
	}

	return accts, nil
}

// WriteEncrypted seals accts under pw and writes the envelope to path.
func WriteEncrypted(path string, accts []Account, pw []byte) error {
	plaintext, err := json.Marshal(accts)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	env, err := cryptox.Seal(plaintext, pw)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return filex.WriteFileAtomic(path, data, 0o600)
}
