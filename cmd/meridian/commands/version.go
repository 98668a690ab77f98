package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/version"

	"github.com/jessevdk/go-flags"
)

type VersionCmd struct {
	config.OutputFlag
}

var versionCmd VersionCmd

func (opts *VersionCmd) Execute(_ []string) error {
	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	if output.IsHuman() {
		fmt.Printf("Meridian CLI %s (%s)\n", version.Get(), version.GetCommitHash())
		return nil
	}

	return mbjson.Print(struct {
		Version string `json:"version"`
		Hash    string `json:"hash"`
	}{
		Version: version.Get(),
		Hash:    version.GetCommitHash(),
	})
}

func Version(_ context.Context, parser *flags.Parser) error {
	versionCmd = VersionCmd{}

	_, err := parser.AddCommand("version", "Show version info", "Show version info", &versionCmd)
	return err
}
