package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// errReported marks failures already printed to the user.
var errReported = errors.New("reported")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
