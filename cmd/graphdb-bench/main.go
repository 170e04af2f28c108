// Command graphdb-bench is a small throughput/latency harness for the WAL
// and edge topology cache, grounded on dreamsxin/wal's bench package (batch
// append loop, b.N-style timing) but exposed as a standalone cobra CLI
// rather than a go test benchmark, so it can be pointed at a real directory
// outside of `go test`.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "graphdb-bench",
		Short: "Benchmark the WAL and edge topology cache",
	}
	root.AddCommand(newWALCmd())
	root.AddCommand(newCacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
