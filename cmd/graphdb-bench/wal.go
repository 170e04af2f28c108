package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/polarsignals/graphdb-core/wal"
)

func newWALCmd() *cobra.Command {
	var (
		dir        string
		entrySize  int
		numEntries int
		fileSizeMB int
	)
	cmd := &cobra.Command{
		Use:   "wal",
		Short: "Append N entries of a given size and report latency percentiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				d, err := os.MkdirTemp("", "graphdb-bench-wal-*")
				if err != nil {
					return err
				}
				defer os.RemoveAll(d)
				dir = d
			}
			return runWALBench(dir, entrySize, numEntries, fileSizeMB)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "WAL directory (defaults to a temp dir)")
	cmd.Flags().IntVar(&entrySize, "entry-size", 128, "payload size in bytes")
	cmd.Flags().IntVar(&numEntries, "entries", 100_000, "number of entries to append")
	cmd.Flags().IntVar(&fileSizeMB, "file-size-mb", 256, "segment file size in MB")
	return cmd
}

func runWALBench(dir string, entrySize, numEntries, fileSizeMB int) error {
	s, err := wal.Open(dir, wal.Config{FileSizeMB: fileSizeMB}, log.NewNopLogger(), prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer s.Close()

	payload := make([]byte, entrySize)
	latencies := make([]time.Duration, 0, numEntries)

	start := time.Now()
	for i := 1; i <= numEntries; i++ {
		t0 := time.Now()
		ok, err := s.Append(uint64(i), payload)
		latencies = append(latencies, time.Since(t0))
		if err != nil {
			return fmt.Errorf("append %d: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("append %d: rejected, id is not one past the last log id", i)
		}
	}
	total := time.Since(start)

	printLatencyReport("wal append", total, latencies, uint64(numEntries)*uint64(entrySize))
	return nil
}

// printLatencyReport computes simple percentiles by sorting, rather than a
// streaming histogram library -- no HdrHistogram-equivalent was found
// wired anywhere in the reference corpus, so this stays on a plain sort.
func printLatencyReport(label string, total time.Duration, latencies []time.Duration, payloadBytes uint64) {
	n := len(latencies)
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	pct := func(p float64) time.Duration {
		if n == 0 {
			return 0
		}
		idx := int(p * float64(n-1))
		return sorted[idx]
	}

	fmt.Printf("%s: n=%d total=%s throughput=%.0f/s written=%s\n",
		label, n, total, float64(n)/total.Seconds(), humanize.Bytes(payloadBytes))
	fmt.Printf("  p50=%s p95=%s p99=%s max=%s\n", pct(0.50), pct(0.95), pct(0.99), sorted[n-1])
}
