// Package accounts loads and validates the account store. Plain JSON and
// YAML stores are supported, plus an encrypted envelope for keeping
// credentials sealed at rest.
package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoAccounts is returned after a template store has been written in
	// place of a missing one; the caller should tell the user to fill it in
	// and exit.
	ErrNoAccounts = errors.New("account store not found, template created")

	// ErrInvalidEmail marks a store entry whose username is not an email
	// address.
	ErrInvalidEmail = errors.New("invalid email address")
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// Account is one identity to process. The password is opaque to the core;
// Proxy optionally overrides the global proxy for this account only.
type Account struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Proxy    string `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

// Key returns the stable unique key for the account.
func (a Account) Key() string { return a.Username }

const template = `[
    {
        "username": "Your Email",
        "password": "Your Password"
    }
]
`

// Load reads the account store at path. The format is chosen by extension:
// .json, .yaml/.yml, or .enc (encrypted JSON envelope). A missing store is
// bootstrapped with a template and reported via ErrNoAccounts. Every
// username must be a valid email address.
func Load(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if werr := os.WriteFile(path, []byte(template), 0o600); werr != nil {
				return nil, fmt.Errorf("write template %s: %w", path, werr)
			}
			return nil, ErrNoAccounts
		}
		return nil, fmt.Errorf("read accounts %s: %w", path, err)
	}

	var accts []Account

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &accts); err != nil {
			return nil, fmt.Errorf("parse accounts %s: %w", path, err)
		}
	case ".enc":
		accts, err = decryptStore(data)
		if err != nil {
			return nil, fmt.Errorf("open encrypted accounts %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &accts); err != nil {
			return nil, fmt.Errorf("parse accounts %s: %w", path, err)
		}
	}

	for _, a := range accts {
		if !emailRe.MatchString(a.Username) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, a.Username)
		}
	}

	return accts, nil
}

// Shuffle randomizes the processing order in place.
func Shuffle(accts []Account) {
	rand.Shuffle(len(accts), func(i, j int) {
		accts[i], accts[j] = accts[j], accts[i]
	})
}
