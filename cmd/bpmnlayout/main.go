// Command bpmnlayout lays out BPMN diagrams from the command line and
// serves the layout HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/bpmnlayout/internal/cli"
	bperrors "github.com/matzehuels/bpmnlayout/pkg/errors"
)

// Exit codes.
const (
	exitFailure     = 1
	exitInvalid     = 2   // the document or options were rejected
	exitInterrupted = 130 // SIGINT, as shells report it
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr).RootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	if bperrors.IsInvalidRequest(err) {
		fmt.Fprintln(os.Stderr, bperrors.UserMessage(err))
		return exitInvalid
	}
	fmt.Fprintln(os.Stderr, err)
	return exitFailure
}
