package cli

import (
	"errors"
	"fmt"
	"os"
)

const minPassphraseLength = 8

var ErrPassphraseMismatch = errors.New("passphrases do not match")

// PromptPassphrase reads an archive passphrase from the terminal without
// echoing it. When confirm is true the passphrase is read twice, which is
// what export wants before sealing data behind it.
func PromptPassphrase(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := readPasswordNoEcho(os.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if len(first) < minPassphraseLength {
		return "", fmt.Errorf("passphrase must be at least %d characters", minPassphraseLength)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := readPasswordNoEcho(os.Stdin)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read passphrase confirmation: %w", err)
		}
		if string(first) != string(second) {
			return "", ErrPassphraseMismatch
		}
	}

	return string(first), nil
}
