package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rocketscienceinc/impostor-backend/internal/cli"
)

// main - is the entry point of the application. It dispatches to the serve and local commands.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "impostor: %v\n", err)
		os.Exit(1)
	}
}
