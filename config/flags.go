package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	// HumanOutput makes the commands print for a reader, through the logger
	// and pretty printed results.
	HumanOutput = "human"
	// JSONOutput makes the commands print a single JSON document, for
	// scripts to consume.
	JSONOutput = "json"
)

var (
	ErrPassphrasesDoNotMatch = errors.New("the passphrases do not match")
	ErrUnsupportedOutput     = errors.New("unsupported output, supported outputs are human and json")
)

// Empty is the root of the flag parser. Every option lives on the
// subcommands.
type Empty struct{}

// HomeFlag is the custom home option shared by the subcommands.
type HomeFlag struct {
	Home string `long:"home" description:"Path to a custom root directory, overriding the standard platform directories"`
}

// PassphraseFlag is the credential store passphrase option shared by the
// subcommands.
type PassphraseFlag struct {
	PassphraseFile Passphrase `long:"passphrase-file" description:"Path to a file containing the passphrase protecting the credential store, if empty will prompt for input"`
}

// Passphrase is the path to a file containing a passphrase. An empty value
// prompts the user instead.
type Passphrase string

func (p Passphrase) Get(prompt string, withConfirmation bool) (string, error) {
	if len(p) == 0 {
		return p.getFromUser(prompt, withConfirmation)
	}
	return p.getFromFile()
}

func (p Passphrase) getFromUser(prompt string, withConfirmation bool) (string, error) {
	fmt.Printf("please enter %s passphrase: ", prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if withConfirmation {
		fmt.Printf("please confirm %s passphrase: ", prompt)
		confirmation, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}

		if string(passphrase) != string(confirmation) {
			return "", ErrPassphrasesDoNotMatch
		}
	}

	return string(passphrase), nil
}

func (p Passphrase) getFromFile() (string, error) {
	buf, err := os.ReadFile(string(p))
	if err != nil {
		return "", fmt.Errorf("couldn't read passphrase file at %s: %w", string(p), err)
	}
	// The trailing newline most editors append is not part of the passphrase.
	return strings.TrimRight(string(buf), "\r\n"), nil
}

// OutputFlag is the output format option shared by the subcommands.
type OutputFlag struct {
	Output Output `long:"output" description:"Format of the command output (human, json)" default:"human"`
}

func (f OutputFlag) GetOutput() (Output, error) {
	switch f.Output {
	case HumanOutput, JSONOutput:
		return f.Output, nil
	default:
		return "", ErrUnsupportedOutput
	}
}

type Output string

func (o Output) IsHuman() bool {
	return o == HumanOutput
}

func (o Output) IsJSON() bool {
	return o == JSONOutput
}
