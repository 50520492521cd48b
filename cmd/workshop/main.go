// Command workshop is the terminal client for the latency workshop API.
package main

import (
	"fmt"
	"os"

	"github.com/tbourn/latency-workshop-app/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
