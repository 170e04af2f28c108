package wal

import (
	"io"
	"os"

	"github.com/go-kit/log/level"

	"github.com/polarsignals/graphdb-core/errs"
)

// Iterator is a forward cursor over [startID, lastID] spanning zero or more
// segment files followed by zero or more in-memory buffers, per spec §4.1.
// It snapshots the files and buffers it needs at construction time so later
// writes or flushes cannot invalidate it (spec §5 "iterator stability"), and
// it holds the segment files it opened for its own lifetime, per §4.1
// "prevents deletion of the specific files it has opened".
type Iterator struct {
	startID uint64
	lastID  uint64

	segFiles []*os.File
	segInfos []segmentInfo

	// bufSnapshots holds, per in-memory buffer live at construction time, a
	// copy of its entries up to that point. Sealed buffers never mutate
	// again so in principle a reference would be safe to read unsynchronized,
	// but the active (unsealed) tail buffer keeps growing concurrently, so
	// every buffer is copied uniformly to avoid a torn read of its entries
	// slice header.
	bufSnapshots [][]bufEntry

	ok     bool
	curID  uint64
	curMsg []byte

	// cursor position: either inside a segment file, or inside the buffer
	// list, never both.
	segIdx     int
	fileOffset int64
	bufIdx     int
	entryIdx   int
}

// Iterator constructs a forward cursor. If lastID is nil, the iterator runs
// to the store's last log id as observed at construction time.
func (s *Store) Iterator(startID uint64, lastID *uint64) (*Iterator, error) {
	if err := s.checkStopped(); err != nil {
		return nil, err
	}

	// Lock ordering per spec §5: bufferMutex first, then walFilesLock.
	s.bufferMu.Lock()
	storeFirst, storeLast, hasEntries := s.firstLogID, s.lastLogID, s.hasEntries
	bufSnapshots := make([][]bufEntry, len(s.buffers))
	for i, b := range s.buffers {
		snap := make([]bufEntry, len(b.entries))
		copy(snap, b.entries)
		bufSnapshots[i] = snap
	}
	s.walFilesLock.Lock()
	segs := make([]segmentInfo, len(s.segments))
	copy(segs, s.segments)
	if s.curSegment != nil && s.curSegment.info.hasEntries {
		segs = append(segs, s.curSegment.info)
	}
	s.walFilesLock.Unlock()
	s.bufferMu.Unlock()

	s.metrics.iteratorsOpened.Inc()

	it := &Iterator{startID: startID, bufSnapshots: bufSnapshots}

	effectiveLast := storeLast
	if lastID != nil && *lastID < effectiveLast {
		effectiveLast = *lastID
	}
	it.lastID = effectiveLast

	if !hasEntries || startID < storeFirst || startID > storeLast || effectiveLast < startID {
		it.ok = false
		return it, nil
	}

	// Open every segment file overlapping [startID, effectiveLast], in
	// order, so a linear scan across them is contiguous.
	for _, si := range segs {
		if si.lastLogID < startID {
			continue
		}
		if si.firstLogID > effectiveLast {
			break
		}
		f, err := os.Open(si.fullname)
		if err != nil {
			// Per spec §4.1 failure semantics: a read/open error during
			// iterator construction marks the iterator invalid rather than
			// propagating to the caller.
			level.Warn(s.logger).Log("msg", "failed to open wal segment for iterator", "file", si.fullname, "err", err)
			it.closeFiles()
			it.ok = false
			return it, nil
		}
		it.segFiles = append(it.segFiles, f)
		it.segInfos = append(it.segInfos, si)
	}

	if err := it.seekTo(startID); err != nil {
		it.closeFiles()
		it.ok = false
		return it, nil
	}

	return it, nil
}

// seekTo positions the cursor at the first record with id == startID,
// reading [log_id|msg_len] headers forward until found, per spec §4.1.
func (it *Iterator) seekTo(startID uint64) error {
	for it.segIdx < len(it.segFiles) {
		f := it.segFiles[it.segIdx]
		for {
			id, msg, size, err := readRecordAt(f, it.fileOffset)
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if id == startID {
				it.curID, it.curMsg, it.ok = id, msg, true
				it.fileOffset += size
				return nil
			}
			it.fileOffset += size
		}
		it.segIdx++
		it.fileOffset = 0
	}

	// Not found in any segment file: must be in the buffer list.
	for it.bufIdx < len(it.bufSnapshots) {
		entries := it.bufSnapshots[it.bufIdx]
		for it.entryIdx < len(entries) {
			e := entries[it.entryIdx]
			if e.logID == startID {
				it.curID, it.curMsg, it.ok = e.logID, e.payload, true
				it.entryIdx++
				return nil
			}
			it.entryIdx++
		}
		it.bufIdx++
		it.entryIdx = 0
	}

	return errs.NotFoundf("log id %d not found in wal store", startID)
}

// readRecordAt reads one full record starting at offset, returning its
// size in bytes so the caller can advance the cursor.
func readRecordAt(f *os.File, offset int64) (id uint64, msg []byte, size int64, err error) {
	var hdrBuf [headerSize]byte
	n, rerr := f.ReadAt(hdrBuf[:], offset)
	if n < headerSize {
		if rerr == io.EOF || rerr == nil {
			return 0, nil, 0, io.EOF
		}
		return 0, nil, 0, errs.IoWrap("reading wal record header", rerr)
	}
	id, msgLen, derr := decodeRecordHeader(hdrBuf[:])
	if derr != nil {
		return 0, nil, 0, derr
	}
	payload := make([]byte, msgLen)
	if _, rerr := f.ReadAt(payload, offset+headerSize); rerr != nil {
		return 0, nil, 0, errs.IoWrap("reading wal record payload", rerr)
	}
	return id, payload, recordSize(int(msgLen)), nil
}

// Valid reports whether the cursor currently references a record.
func (it *Iterator) Valid() bool { return it.ok }

// Entry returns the record at the current cursor position. Only call when
// Valid() is true.
func (it *Iterator) Entry() (id uint64, msg []byte) { return it.curID, it.curMsg }

// Next advances the cursor by one record.
func (it *Iterator) Next() error {
	if !it.ok {
		return nil
	}
	if it.curID >= it.lastID {
		it.ok = false
		it.curMsg = nil
		return nil
	}

	// Continue in the current file if possible.
	for it.segIdx < len(it.segFiles) {
		f := it.segFiles[it.segIdx]
		id, msg, size, err := readRecordAt(f, it.fileOffset)
		if err == io.EOF {
			it.segIdx++
			it.fileOffset = 0
			continue
		}
		if err != nil {
			it.ok = false
			it.curMsg = nil
			return err
		}
		it.fileOffset += size
		it.curID, it.curMsg = id, msg
		return nil
	}

	// Files exhausted: continue into the buffer list.
	for it.bufIdx < len(it.bufSnapshots) {
		entries := it.bufSnapshots[it.bufIdx]
		if it.entryIdx >= len(entries) {
			it.bufIdx++
			it.entryIdx = 0
			continue
		}
		e := entries[it.entryIdx]
		it.entryIdx++
		it.curID, it.curMsg = e.logID, e.payload
		return nil
	}

	it.ok = false
	it.curMsg = nil
	return nil
}

func (it *Iterator) closeFiles() {
	for _, f := range it.segFiles {
		_ = f.Close()
	}
	it.segFiles = nil
}

// Close releases the iterator's held file descriptors. Iterators are not
// thread-safe and must be dropped by the single worker using them (spec §5).
func (it *Iterator) Close() error {
	it.closeFiles()
	return nil
}
