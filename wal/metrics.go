package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type storeMetrics struct {
	appends          prometheus.Counter
	appendsRejected  prometheus.Counter
	entriesWritten   prometheus.Counter
	bytesWritten     prometheus.Counter
	segmentRotations prometheus.Counter
	bufferRotations  prometheus.Counter
	recoveryRepairs  prometheus.Counter
	recoveryLost     prometheus.Counter
	iteratorsOpened  prometheus.Counter
	fatalErrors      prometheus.Counter
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	reg = prometheus.WrapRegistererWithPrefix("graphdb_wal_", reg)
	return &storeMetrics{
		appends: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "appends_total",
			Help: "Number of successful calls to Append.",
		}),
		appendsRejected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "appends_rejected_total",
			Help: "Number of Append calls rejected due to a log id gap.",
		}),
		entriesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "entries_written_total",
			Help: "Number of log entries flushed to segment files.",
		}),
		bytesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "bytes_written_total",
			Help: "Number of encoded record bytes flushed to segment files.",
		}),
		segmentRotations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "segment_rotations_total",
			Help: "Number of times the flush worker rolled over to a new segment file.",
		}),
		bufferRotations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "buffer_rotations_total",
			Help: "Number of times the appender sealed a buffer and started a new one.",
		}),
		recoveryRepairs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "recovery_repairs_total",
			Help: "Number of segment files discarded at open for being corrupt or on the wrong side of a gap.",
		}),
		recoveryLost: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "recovery_lost_records_total",
			Help: "Estimated number of records lost to recovery repairs.",
		}),
		iteratorsOpened: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "iterators_opened_total",
			Help: "Number of WAL iterators constructed.",
		}),
		fatalErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "fatal_errors_total",
			Help: "Number of fatal errors observed by the flush worker.",
		}),
	}
}
