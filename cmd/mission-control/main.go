// Command mission-control runs the satellite mission-control simulator: a
// gRPC server, an interactive console and orbital calculator shortcuts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
