package wal

import "fmt"

const (
	defaultFileSizeMB   = 256
	defaultBufferSizeMB = 8
	defaultNumBuffers   = 2

	// tailReopenFraction: a tail segment under this fraction of the max
	// segment size is reopened append-only on recovery; otherwise a fresh
	// segment is started. Spec §4.1 step 4: 15/16.
	tailReopenNumerator   = 15
	tailReopenDenominator = 16
)

// Config carries the WAL's externally-supplied tuning knobs. It is built
// once by the host (a config loader outside this package's scope, per
// Design Notes "global flag-driven configuration -> struct passed at
// construction") and passed to Open.
type Config struct {
	// FileSizeMB bounds a single on-disk segment file.
	FileSizeMB int
	// BufferSizeMB bounds a single in-memory write buffer.
	BufferSizeMB int
	// NumBuffers bounds the number of outstanding (unflushed) buffers;
	// Append blocks once this many buffers are queued for flush.
	NumBuffers int
}

func (c Config) withDefaults() Config {
	if c.FileSizeMB <= 0 {
		c.FileSizeMB = defaultFileSizeMB
	}
	if c.BufferSizeMB <= 0 {
		c.BufferSizeMB = defaultBufferSizeMB
	}
	if c.NumBuffers <= 0 {
		c.NumBuffers = defaultNumBuffers
	}
	return c
}

func (c Config) validate() error {
	if c.BufferSizeMB > c.FileSizeMB {
		return fmt.Errorf("wal: buffer_size_mb (%d) must not exceed file_size_mb (%d)", c.BufferSizeMB, c.FileSizeMB)
	}
	return nil
}

func (c Config) fileSizeBytes() int64   { return int64(c.FileSizeMB) * 1024 * 1024 }
func (c Config) bufferSizeBytes() int64 { return int64(c.BufferSizeMB) * 1024 * 1024 }
