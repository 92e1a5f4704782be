// freedvtnc2 - a FreeDV packet-radio TNC with a TCP control plane.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LFManifesto/freedvtnc2/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "freedvtnc2: %v\n", err)
		os.Exit(1)
	}
}
