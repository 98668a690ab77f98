package main

import (
	"context"
	"os"

	"code.meridianbank.io/meridian-go/cmd/meridian/commands"
)

func main() {
	ctx := context.Background()
	if err := commands.Main(ctx); err != nil {
		os.Exit(-1)
	}
}
