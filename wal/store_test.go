package wal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, dir string, cfg Config) *Store {
	t.Helper()
	s, err := Open(dir, cfg, log.NewNopLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	return s
}

func drain(t *testing.T, it *Iterator) []string {
	t.Helper()
	var out []string
	for it.Valid() {
		_, msg := it.Entry()
		out = append(out, string(msg))
		require.NoError(t, it.Next())
	}
	return out
}

func TestAppendAndIteratorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})

	ok, err := s.Append(1, []byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.Append(2, []byte("bb"))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.Append(3, []byte("ccc"))
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, uint64(1), s.FirstLogID())
	require.Equal(t, uint64(3), s.LastLogID())

	it, err := s.Iterator(1, nil)
	require.NoError(t, err)
	defer it.Close()
	require.Equal(t, []string{"a", "bb", "ccc"}, drain(t, it))

	require.NoError(t, s.Close())

	// Reopen: flushed records must survive.
	s2 := openTestStore(t, dir, Config{})
	defer s2.Close()
	require.Equal(t, uint64(1), s2.FirstLogID())
	require.Equal(t, uint64(3), s2.LastLogID())
	it2, err := s2.Iterator(2, nil)
	require.NoError(t, err)
	defer it2.Close()
	require.Equal(t, []string{"bb", "ccc"}, drain(t, it2))
}

func TestAppendRejectsNonContiguousID(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	defer s.Close()

	ok, err := s.Append(1, []byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Append(3, []byte("skip"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEmptyRangeIteratorIsImmediatelyInvalid(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	defer s.Close()

	it, err := s.Iterator(1, nil)
	require.NoError(t, err)
	defer it.Close()
	require.False(t, it.Valid())
}

func TestIteratorStableAcrossLaterAppends(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	defer s.Close()

	_, err := s.Append(1, []byte("a"))
	require.NoError(t, err)

	it, err := s.Iterator(1, nil)
	require.NoError(t, err)
	defer it.Close()

	_, err = s.Append(2, []byte("bb"))
	require.NoError(t, err)

	// The iterator was constructed before id 2 existed, so it must not see it.
	require.Equal(t, []string{"a"}, drain(t, it))
}

// TestRecoveryTruncatesTornTailWrite implements the torn-tail-write crash
// recovery scenario: three records are written to one segment, the last
// record's write is simulated as torn by truncating the trailing bytes of
// its on-disk framing, and reopening must recover exactly the first two
// records while discarding the third.
func TestRecoveryTruncatesTornTailWrite(t *testing.T) {
	dir := t.TempDir()

	var buf []byte
	buf = encodeRecord(buf, 1, []byte("a"))
	buf = encodeRecord(buf, 2, []byte("bb"))
	goodLen := len(buf)
	buf = encodeRecord(buf, 3, []byte("ccc"))

	name := filepath.Join(dir, segmentFilename(1))
	require.NoError(t, os.WriteFile(name, buf, 0o640))

	// Simulate a crash mid-write of record 3: truncate its trailing length
	// marker (and a few more bytes) so the tail record cannot validate.
	truncated := buf[:len(buf)-5]
	require.NoError(t, os.WriteFile(name, truncated, 0o640))

	s := openTestStore(t, dir, Config{})
	defer s.Close()

	require.Equal(t, uint64(1), s.FirstLogID())
	require.Equal(t, uint64(2), s.LastLogID())

	it, err := s.Iterator(1, nil)
	require.NoError(t, err)
	defer it.Close()
	require.Equal(t, []string{"a", "bb"}, drain(t, it))

	fi, err := os.Stat(name)
	require.NoError(t, err)
	require.Equal(t, int64(goodLen), fi.Size())

	// The store must still accept further appends after the repair, picking
	// up exactly where the recovered tail left off.
	ok, err := s.Append(3, []byte("ddd"))
	require.NoError(t, err)
	require.True(t, ok)
}

// TestRecoveryKeepsLongestLiveSuffixAcrossGap implements the gap-repair
// scenario: three segments are prepared with a gap between the second and
// third (ids 1-9 and 10-15, then a break, then 20-25), and recovery must discard
// everything before the gap and keep only the contiguous run starting at 20.
func TestRecoveryKeepsLongestLiveSuffixAcrossGap(t *testing.T) {
	dir := t.TempDir()

	writeFakeSegment(t, dir, 1, 1, 9)
	writeFakeSegment(t, dir, 10, 10, 15)
	writeFakeSegment(t, dir, 20, 20, 25)

	s := openTestStore(t, dir, Config{})
	defer s.Close()

	require.Equal(t, uint64(20), s.FirstLogID())
	require.Equal(t, uint64(25), s.LastLogID())

	for _, first := range []uint64{1, 10} {
		_, err := os.Stat(filepath.Join(dir, segmentFilename(first)))
		require.True(t, os.IsNotExist(err), "segment %d should have been deleted", first)
	}
	_, err := os.Stat(filepath.Join(dir, segmentFilename(20)))
	require.NoError(t, err)

	it, err := s.Iterator(20, nil)
	require.NoError(t, err)
	defer it.Close()
	require.True(t, it.Valid())
	id, _ := it.Entry()
	require.Equal(t, uint64(20), id)
}

func writeFakeSegment(t *testing.T, dir string, fileFirst, idFirst, idLast uint64) {
	t.Helper()
	var buf []byte
	for id := idFirst; id <= idLast; id++ {
		buf = encodeRecord(buf, id, []byte("x"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, segmentFilename(fileFirst)), buf, 0o640))
}

func TestSegmentRolloverOnSize(t *testing.T) {
	dir := t.TempDir()
	// Each record is 8+4+7+4 = 23 bytes, so ~70,000 records are about 1.6MB;
	// a 1MB file bound forces at least one rollover.
	cfg := Config{FileSizeMB: 1, BufferSizeMB: 1, NumBuffers: 4}
	const n = 70000
	s := openTestStore(t, dir, cfg)
	for i := uint64(1); i <= n; i++ {
		ok, err := s.Append(i, []byte("payload"))
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, s.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Greater(t, len(entries), 1, "expected more than one segment file after rollover")

	s2 := openTestStore(t, dir, cfg)
	defer s2.Close()
	require.Equal(t, uint64(1), s2.FirstLogID())
	require.Equal(t, uint64(n), s2.LastLogID())
	it, err := s2.Iterator(1, nil)
	require.NoError(t, err)
	defer it.Close()
	require.Len(t, drain(t, it), n)
}

func TestTruncateAfter(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	defer s.Close()

	for i := uint64(1); i <= 5; i++ {
		_, err := s.Append(i, []byte("x"))
		require.NoError(t, err)
	}

	require.NoError(t, s.TruncateAfter(3))
	require.Equal(t, uint64(3), s.LastLogID())

	ok, err := s.Append(4, []byte("y"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAppendManyStopsAtFirstGap(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	defer s.Close()

	n, err := s.AppendMany([]Entry{
		{ID: 1, Msg: []byte("a")},
		{ID: 2, Msg: []byte("b")},
		{ID: 4, Msg: []byte("skip")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, uint64(2), s.LastLogID())
}

func TestCloseRejectsFurtherAppends(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, Config{})
	require.NoError(t, s.Close())

	_, err := s.Append(1, []byte("a"))
	require.Error(t, err)
}
