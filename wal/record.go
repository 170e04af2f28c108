package wal

import (
	"encoding/binary"
	"fmt"

	"github.com/polarsignals/graphdb-core/errs"
)

// On-disk record layout (little-endian, spec §6):
//
//	log_id  uint64
//	msg_len uint32
//	payload msg_len bytes
//	msg_len uint32 (repeated; the integrity marker)
const (
	logIDSize    = 8
	msgLenSize   = 4
	headerSize   = logIDSize + msgLenSize
	trailerSize  = msgLenSize
	minRecordLen = headerSize + trailerSize

	// filenameDigits is the fixed width of the zero-padded first-log-id
	// segment filename, per spec §6.
	filenameDigits = 19
	filenameSuffix = ".wal"
)

// segmentFilename renders the canonical 19-digit zero-padded filename for a
// segment whose first log id is id.
func segmentFilename(id uint64) string {
	return fmt.Sprintf("%0*d%s", filenameDigits, id, filenameSuffix)
}

// encodeRecord serializes one log record into dst's tail, returning the
// extended slice. Layout: log_id | msg_len | payload | msg_len.
func encodeRecord(dst []byte, logID uint64, payload []byte) []byte {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], logID)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, payload...)
	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint32(trailer[:], uint32(len(payload)))
	dst = append(dst, trailer[:]...)
	return dst
}

func recordSize(payloadLen int) int64 {
	return int64(headerSize + payloadLen + trailerSize)
}

// decodeRecordHeader reads (log_id, msg_len) from the first headerSize bytes
// of buf.
func decodeRecordHeader(buf []byte) (logID uint64, msgLen uint32, err error) {
	if len(buf) < headerSize {
		return 0, 0, errs.IoWrap("short record header", fmt.Errorf("need %d bytes, got %d", headerSize, len(buf)))
	}
	logID = binary.LittleEndian.Uint64(buf[0:8])
	msgLen = binary.LittleEndian.Uint32(buf[8:12])
	return logID, msgLen, nil
}

func decodeTrailer(buf []byte) (uint32, error) {
	if len(buf) < trailerSize {
		return 0, errs.IoWrap("short record trailer", fmt.Errorf("need %d bytes, got %d", trailerSize, len(buf)))
	}
	return binary.LittleEndian.Uint32(buf), nil
}
