package wal

// bufEntry is one pending record inside a writeBuffer.
type bufEntry struct {
	logID   uint64
	payload []byte
}

// writeBuffer is the in-memory, not-yet-flushed batch of log records
// described in spec §3: an append-only run of payloads sharing one
// firstLogID. Entries are kept individually (rather than pre-encoded into
// one blob) so the flush worker can apply segment-rollover bookkeeping
// record-by-record, per spec §4.1's flush-path mid-buffer rollover rule.
type writeBuffer struct {
	firstLogID uint64
	lastLogID  uint64
	entries    []bufEntry
	size       int64 // sum of on-disk record sizes (framing included)
	frozen     bool
}

func newWriteBuffer(firstLogID uint64) *writeBuffer {
	return &writeBuffer{firstLogID: firstLogID}
}

// append adds one record to the buffer. Callers are responsible for
// sequencing checks (log id contiguity) before calling append.
func (b *writeBuffer) append(logID uint64, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	b.entries = append(b.entries, bufEntry{logID: logID, payload: cp})
	b.lastLogID = logID
	b.size += recordSize(len(payload))
}

func (b *writeBuffer) sizeBytes() int64 { return b.size }

func (b *writeBuffer) projectedSize(payloadLen int) int64 {
	return b.size + recordSize(payloadLen)
}

func (b *writeBuffer) seal() { b.frozen = true }

func (b *writeBuffer) isEmpty() bool { return len(b.entries) == 0 }

func (b *writeBuffer) numEntries() int { return len(b.entries) }
