// Command recruitctl builds forms, applies to them and reviews applications
// against a recruitment server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbolis/recruit/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(prompt.Survey(os.Stdout))
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
