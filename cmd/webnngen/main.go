package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/roach88/webnngen/internal/cli"
	"github.com/roach88/webnngen/internal/ir"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	// A contract violation means the generator itself is wrong. Report it
	// with its stack and a distinct exit code.
	defer func() {
		if r := recover(); r != nil {
			cv, ok := ir.AsContractViolation(r)
			if !ok {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "webnngen: internal error: %v\n%+v\n", cv, cv.Unwrap())
			code = cli.ExitContractViolation
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		// Cobra's own errors (unknown command, bad arguments).
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
