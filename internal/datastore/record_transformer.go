package datastore

import (
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/rs/zerolog"
)

// RecordTransformer handles transformation of probe records
type RecordTransformer struct {
	logger zerolog.Logger
}

// NewRecordTransformer creates a new RecordTransformer
func NewRecordTransformer(logger zerolog.Logger) *RecordTransformer {
	return &RecordTransformer{
		logger: logger.With().Str("component", "RecordTransformer").Logger(),
	}
}

// TransformToParquetRecord converts a models.ProbeRecord to a models.ParquetProbeRecord
func (rt *RecordTransformer) TransformToParquetRecord(record models.ProbeRecord) models.ParquetProbeRecord {
	return models.ParquetProbeRecord{
		SessionID:     record.SessionID,
		Host:          record.Host,
		URL:           record.URL,
		Status:        record.Status,
		TargetCount:   int32(record.TargetCount),
		Message:       StringPtrOrNil(record.Message),
		ScanTimestamp: record.Timestamp.UnixMilli(),
		Duration:      Float64PtrOrNilZero(record.Duration),
	}
}
