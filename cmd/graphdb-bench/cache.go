package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/polarsignals/graphdb-core/cache"
)

func newCacheCmd() *cobra.Command {
	var (
		numVertices int
		numLookups  int
		edgePoolMB  int
	)
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Populate the edge topology cache and report a random-lookup hit rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheBench(numVertices, numLookups, edgePoolMB)
		},
	}
	cmd.Flags().IntVar(&numVertices, "vertices", 100_000, "number of distinct edge-list entries to populate")
	cmd.Flags().IntVar(&numLookups, "lookups", 1_000_000, "number of random lookups to issue")
	cmd.Flags().IntVar(&edgePoolMB, "edge-pool-mb", 64, "edge pool byte budget in MB")
	return cmd
}

func runCacheBench(numVertices, numLookups, edgePoolMB int) error {
	c, err := cache.Open(cache.Config{EdgePoolMB: edgePoolMB}, log.NewNopLogger(), prometheus.NewRegistry())
	if err != nil {
		return err
	}

	keys := make([]cache.EdgeKey, numVertices)
	for i := 0; i < numVertices; i++ {
		key := cache.NewEdgeKey("v"+strconv.Itoa(i), 1)
		keys[i] = key
		c.PutEdges(key, []string{"dst1", "dst2", "dst3"}, time.Hour)
	}

	rng := rand.New(rand.NewSource(1))
	hits := 0
	start := time.Now()
	for i := 0; i < numLookups; i++ {
		k := keys[rng.Intn(len(keys))]
		if _, err := c.GetEdges(k); err == nil {
			hits++
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("cache lookup: n=%d hitRate=%.4f throughput=%.0f/s populated=%s\n",
		numLookups, float64(hits)/float64(numLookups), float64(numLookups)/elapsed.Seconds(),
		humanize.Comma(int64(numVertices)))
	return nil
}
