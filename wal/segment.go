package wal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/polarsignals/graphdb-core/errs"
)

// segmentInfo is the metadata frostdb's types.SegmentInfo tracks for one
// on-disk WAL file, per spec §3 "WAL segment file".
type segmentInfo struct {
	firstLogID uint64
	lastLogID  uint64
	size       int64
	mtime      time.Time
	fullname   string
	hasEntries bool
}

// parseSegmentFilename extracts the first-log-id encoded in a "*.wal"
// filename, per spec §6.
func parseSegmentFilename(name string) (uint64, bool) {
	if !strings.HasSuffix(name, filenameSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(name, filenameSuffix)
	if len(digits) != filenameDigits {
		return 0, false
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// listSegmentFiles enumerates files matching "*.wal" in dir (recovery step
// 1). Files are returned unsorted; the caller sorts by firstLogID.
func listSegmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.IoWrap("reading wal directory", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := parseSegmentFilename(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// recoverSegment inspects one candidate segment file and returns its
// metadata, or an error if the file is corrupt and must be discarded
// (recovery step 2).
func recoverSegment(dir, name string, logger log.Logger) (segmentInfo, error) {
	declaredFirst, ok := parseSegmentFilename(name)
	if !ok {
		return segmentInfo{}, fmt.Errorf("not a wal segment filename: %s", name)
	}
	full := filepath.Join(dir, name)

	f, err := os.Open(full)
	if err != nil {
		return segmentInfo{}, errs.IoWrap("opening segment for recovery", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return segmentInfo{}, errs.IoWrap("stat segment", err)
	}
	size := fi.Size()
	if size < minRecordLen {
		return segmentInfo{}, fmt.Errorf("segment %s too small to hold one record (%d bytes)", name, size)
	}

	// First 8 bytes must equal the filename-encoded first log id.
	var first8 [logIDSize]byte
	if _, err := f.ReadAt(first8[:], 0); err != nil {
		return segmentInfo{}, errs.IoWrap("reading segment header", err)
	}
	actualFirst := binary.LittleEndian.Uint64(first8[:])
	if actualFirst != declaredFirst {
		return segmentInfo{}, fmt.Errorf("segment %s: header log_id %d does not match filename", name, actualFirst)
	}

	// Fast path: read the final record's trailing msg_len, seek back
	// msg_len+4 bytes, and check the leading msg_len matches. If it does,
	// the whole file is well-formed and we can avoid a full forward scan.
	if finalLogID, ok := tryFastTailCheck(f, size); ok {
		level.Debug(logger).Log("msg", "wal segment recovered", "file", name, "first", actualFirst, "last", finalLogID, "size", size)
		return segmentInfo{
			firstLogID: actualFirst,
			lastLogID:  finalLogID,
			size:       size,
			mtime:      fi.ModTime(),
			fullname:   full,
			hasEntries: true,
		}, nil
	}

	// The tail record is torn (e.g. the process died mid-write, as in a
	// crash that occurs after the header but before the trailing length is
	// flushed). Forward-scan from the start, keeping every record that
	// parses completely and matches leading/trailing length, and truncate
	// the file to the last good record. A file with zero valid records is
	// corrupt and discarded entirely.
	lastGoodOffset, finalLogID, n, err := forwardScanValidPrefix(f, size)
	if err != nil {
		return segmentInfo{}, err
	}
	if n == 0 {
		return segmentInfo{}, fmt.Errorf("segment %s: no valid records found", name)
	}
	if lastGoodOffset != size {
		if err := f.Truncate(lastGoodOffset); err != nil {
			return segmentInfo{}, errs.IoWrap("truncating torn wal segment tail", err)
		}
		level.Warn(logger).Log("msg", "wal segment tail was torn; truncated to last valid record",
			"file", name, "keptBytes", lastGoodOffset, "droppedBytes", size-lastGoodOffset)
	}

	return segmentInfo{
		firstLogID: actualFirst,
		lastLogID:  finalLogID,
		size:       lastGoodOffset,
		mtime:      fi.ModTime(),
		fullname:   full,
		hasEntries: true,
	}, nil
}

// tryFastTailCheck verifies the final record's leading and trailing
// msg_len agree, returning the final log id if so.
func tryFastTailCheck(f *os.File, size int64) (uint64, bool) {
	if size < minRecordLen {
		return 0, false
	}
	var trailerBuf [trailerSize]byte
	if _, err := f.ReadAt(trailerBuf[:], size-trailerSize); err != nil {
		return 0, false
	}
	trailingLen, err := decodeTrailer(trailerBuf[:])
	if err != nil {
		return 0, false
	}
	finalRecordOffset := size - recordSize(int(trailingLen))
	if finalRecordOffset < 0 {
		return 0, false
	}
	var hdrBuf [headerSize]byte
	if _, err := f.ReadAt(hdrBuf[:], finalRecordOffset); err != nil {
		return 0, false
	}
	finalLogID, leadingLen, err := decodeRecordHeader(hdrBuf[:])
	if err != nil || leadingLen != trailingLen {
		return 0, false
	}
	return finalLogID, true
}

// forwardScanValidPrefix walks records from offset 0, stopping at the first
// record that doesn't parse completely (short read, or leading/trailing
// msg_len mismatch). It returns the byte offset just past the last valid
// record, that record's log id, and the count of valid records found.
func forwardScanValidPrefix(f *os.File, size int64) (lastGoodOffset int64, lastLogID uint64, count int, err error) {
	var offset int64
	for offset+minRecordLen <= size {
		var hdrBuf [headerSize]byte
		if _, rerr := f.ReadAt(hdrBuf[:], offset); rerr != nil {
			break
		}
		logID, msgLen, rerr := decodeRecordHeader(hdrBuf[:])
		if rerr != nil {
			break
		}
		total := recordSize(int(msgLen))
		if offset+total > size {
			break
		}
		var trailerBuf [trailerSize]byte
		if _, rerr := f.ReadAt(trailerBuf[:], offset+total-trailerSize); rerr != nil {
			break
		}
		trailingLen, rerr := decodeTrailer(trailerBuf[:])
		if rerr != nil || trailingLen != msgLen {
			break
		}
		offset += total
		lastLogID = logID
		count++
	}
	return offset, lastLogID, count, nil
}

// sortSegments orders segments by firstLogID ascending.
func sortSegments(segs []segmentInfo) {
	sort.Slice(segs, func(i, j int) bool { return segs[i].firstLogID < segs[j].firstLogID })
}

// findLongestLiveSuffix implements the gap-repair policy (spec §4.1 step 3,
// Open Question #1 resolved in SPEC_FULL.md: keep the longest live
// contiguous suffix). Segments must already be sorted by firstLogID. It
// returns the index of the first segment to keep; segments before that
// index should be deleted.
func findLongestLiveSuffix(segs []segmentInfo) int {
	keepFrom := 0
	for i := 1; i < len(segs); i++ {
		if segs[i].firstLogID != segs[i-1].lastLogID+1 {
			// Gap found between segs[i-1] and segs[i]: everything up to and
			// including segs[i-1] is discarded in favor of this later run.
			keepFrom = i
		}
	}
	return keepFrom
}

func (s segmentInfo) isUnderTailReopenThreshold(maxSize int64) bool {
	return s.size*tailReopenDenominator < maxSize*tailReopenNumerator
}

// segmentWriter wraps the append-only os.File handle for the current tail
// segment.
type segmentWriter struct {
	info segmentInfo
	f    *os.File
}

func createSegment(dir string, firstLogID uint64) (*segmentWriter, error) {
	name := segmentFilename(firstLogID)
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_RDWR|os.O_APPEND|os.O_EXCL, 0o640)
	if err != nil {
		return nil, errs.IoWrap("creating segment file", err)
	}
	return &segmentWriter{
		info: segmentInfo{firstLogID: firstLogID, lastLogID: 0, size: 0, mtime: time.Now(), fullname: full},
		f:    f,
	}, nil
}

// openSegmentForAppend reopens a recovered tail segment append-only. Writes
// always land at the file's current end regardless of prior truncation, so
// the caller's truncate-to-last-valid-record during recovery is preserved.
func openSegmentForAppend(info segmentInfo) (*segmentWriter, error) {
	f, err := os.OpenFile(info.fullname, os.O_RDWR|os.O_APPEND, 0o640)
	if err != nil {
		return nil, errs.IoWrap("reopening tail segment", err)
	}
	return &segmentWriter{info: info, f: f}, nil
}

// write appends raw encoded record bytes (which may span multiple records)
// to the segment and advances its lastLogID/size bookkeeping. It does not
// fsync; callers fsync once per flush batch.
func (sw *segmentWriter) write(buf []byte, lastLogIDWritten uint64) error {
	if _, err := sw.f.Write(buf); err != nil {
		return errs.IoWrap("writing segment", err)
	}
	sw.info.hasEntries = true
	sw.info.size += int64(len(buf))
	sw.info.lastLogID = lastLogIDWritten
	sw.info.mtime = time.Now()
	return nil
}

func (sw *segmentWriter) sync() error {
	if err := sw.f.Sync(); err != nil {
		return errs.IoWrap("fsync segment", err)
	}
	return nil
}

func (sw *segmentWriter) close() error {
	return sw.f.Close()
}

func deleteSegments(segs []segmentInfo, logger log.Logger) {
	for _, s := range segs {
		if err := os.Remove(s.fullname); err != nil && !os.IsNotExist(err) {
			level.Warn(logger).Log("msg", "failed to delete stale wal segment", "file", s.fullname, "err", err)
			continue
		}
		level.Info(logger).Log("msg", "deleted wal segment", "file", s.fullname, "first", s.firstLogID, "last", s.lastLogID)
	}
}
