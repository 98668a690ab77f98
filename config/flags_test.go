package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"code.meridianbank.io/meridian-go/config"
	mbrand "code.meridianbank.io/meridian-go/libs/rand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassphraseFlag(t *testing.T) {
	t.Run("Reading passphrase from file succeeds", testPassphraseFlagReadingPassphraseFromFileSucceeds)
	t.Run("Trailing line endings are not part of the passphrase", testPassphraseFlagTrailingLineEndingsAreNotPartOfPassphrase)
	t.Run("Reading passphrase from missing file fails", testPassphraseFlagReadingPassphraseFromMissingFileFails)
}

func testPassphraseFlagReadingPassphraseFromFileSucceeds(t *testing.T) {
	// given
	expectedPassphrase := mbrand.RandomStr(10)
	passphraseFilePath := filepath.Join(t.TempDir(), "passphrase.txt")

	// setup
	require.NoError(t, os.WriteFile(passphraseFilePath, []byte(expectedPassphrase), 0o600))

	// when
	passphrase, err := config.Passphrase(passphraseFilePath).Get("credential store", false)

	// then
	require.NoError(t, err)
	assert.Equal(t, expectedPassphrase, passphrase)
}

func testPassphraseFlagTrailingLineEndingsAreNotPartOfPassphrase(t *testing.T) {
	// given
	expectedPassphrase := mbrand.RandomStr(10)
	passphraseFilePath := filepath.Join(t.TempDir(), "passphrase.txt")

	// setup
	require.NoError(t, os.WriteFile(passphraseFilePath, []byte(expectedPassphrase+"\r\n"), 0o600))

	// when
	passphrase, err := config.Passphrase(passphraseFilePath).Get("credential store", false)

	// then
	require.NoError(t, err)
	assert.Equal(t, expectedPassphrase, passphrase)
}

func testPassphraseFlagReadingPassphraseFromMissingFileFails(t *testing.T) {
	// given
	passphraseFilePath := filepath.Join(t.TempDir(), "passphrase.txt")

	// when
	passphrase, err := config.Passphrase(passphraseFilePath).Get("credential store", false)

	// then
	require.Error(t, err)
	assert.Empty(t, passphrase)
}

func TestOutputFlag(t *testing.T) {
	t.Run("Supported outputs are accepted", testOutputFlagSupportedOutputsAreAccepted)
	t.Run("Unsupported output is rejected", testOutputFlagUnsupportedOutputIsRejected)
}

func testOutputFlagSupportedOutputsAreAccepted(t *testing.T) {
	tcs := []struct {
		name    string
		output  config.Output
		isHuman bool
		isJSON  bool
	}{
		{
			name:    "human output",
			output:  config.HumanOutput,
			isHuman: true,
		}, {
			name:   "json output",
			output: config.JSONOutput,
			isJSON: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(tt *testing.T) {
			// given
			flag := config.OutputFlag{Output: tc.output}

			// when
			output, err := flag.GetOutput()

			// then
			require.NoError(tt, err)
			assert.Equal(tt, tc.isHuman, output.IsHuman())
			assert.Equal(tt, tc.isJSON, output.IsJSON())
		})
	}
}

func testOutputFlagUnsupportedOutputIsRejected(t *testing.T) {
	// given
	flag := config.OutputFlag{Output: "yaml"}

	// when
	output, err := flag.GetOutput()

	// then
	require.ErrorIs(t, err, config.ErrUnsupportedOutput)
	assert.Empty(t, output)
}
