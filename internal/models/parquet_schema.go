package models

import "time"

// ParquetProbeRecord defines the schema for exporting probe history using parquet-go/parquet-go.
// Optional fields use pointers and the ',optional' tag.
type ParquetProbeRecord struct {
	SessionID     string   `parquet:"session_id"`
	Host          string   `parquet:"host"`
	URL           string   `parquet:"url"`
	Status        string   `parquet:"status"`
	TargetCount   int32    `parquet:"target_count"`
	Message       *string  `parquet:"message,optional"`
	ScanTimestamp int64    `parquet:"scan_timestamp"` // milliseconds since epoch
	Duration      *float64 `parquet:"duration_seconds,optional"`
}

// ToProbeRecord converts an exported row back into a ProbeRecord.
func (p ParquetProbeRecord) ToProbeRecord() ProbeRecord {
	record := ProbeRecord{
		SessionID:   p.SessionID,
		Host:        p.Host,
		URL:         p.URL,
		Status:      p.Status,
		TargetCount: int(p.TargetCount),
		Timestamp:   time.UnixMilli(p.ScanTimestamp).UTC(),
	}
	if p.Message != nil {
		record.Message = *p.Message
	}
	if p.Duration != nil {
		record.Duration = *p.Duration
	}
	return record
}
