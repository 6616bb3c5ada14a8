package datastore

import (
	"context"
	"os"
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/config"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetWriterConfig holds configuration for ParquetWriter
type ParquetWriterConfig struct {
	CompressionType string
}

// DefaultParquetWriterConfig returns default configuration
func DefaultParquetWriterConfig() ParquetWriterConfig {
	return ParquetWriterConfig{
		CompressionType: "zstd",
	}
}

// ParquetWriter exports probe history to Parquet files.
type ParquetWriter struct {
	config        *config.StorageConfig
	logger        zerolog.Logger
	pathGenerator *FilePathGenerator
	transformer   *RecordTransformer
	writerConfig  ParquetWriterConfig
}

// ParquetWriterBuilder provides a fluent interface for creating ParquetWriter
type ParquetWriterBuilder struct {
	config       *config.StorageConfig
	logger       zerolog.Logger
	writerConfig ParquetWriterConfig
}

// NewParquetWriterBuilder creates a new ParquetWriterBuilder
func NewParquetWriterBuilder(logger zerolog.Logger) *ParquetWriterBuilder {
	return &ParquetWriterBuilder{
		logger:       logger.With().Str("component", "ParquetWriter").Logger(),
		writerConfig: DefaultParquetWriterConfig(),
	}
}

// WithStorageConfig sets the storage configuration
func (b *ParquetWriterBuilder) WithStorageConfig(cfg *config.StorageConfig) *ParquetWriterBuilder {
	b.config = cfg
	return b
}

// WithWriterConfig sets the writer configuration
func (b *ParquetWriterBuilder) WithWriterConfig(cfg ParquetWriterConfig) *ParquetWriterBuilder {
	b.writerConfig = cfg
	return b
}

// Build creates a new ParquetWriter instance
func (b *ParquetWriterBuilder) Build() (*ParquetWriter, error) {
	if b.config == nil {
		return nil, common.NewValidationError("config", b.config, "storage config cannot be nil")
	}
	if b.config.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", b.config.ParquetBasePath, "ParquetBasePath is not configured")
	}

	return &ParquetWriter{
		config:        b.config,
		logger:        b.logger,
		pathGenerator: NewFilePathGenerator(b.config.ParquetBasePath, b.logger),
		transformer:   NewRecordTransformer(b.logger),
		writerConfig:  b.writerConfig,
	}, nil
}

// NewParquetWriter creates a new ParquetWriter using the storage compression codec
func NewParquetWriter(cfg *config.StorageConfig, logger zerolog.Logger) (*ParquetWriter, error) {
	builder := NewParquetWriterBuilder(logger).WithStorageConfig(cfg)
	if cfg != nil && cfg.CompressionCodec != "" {
		builder.WithWriterConfig(ParquetWriterConfig{CompressionType: cfg.CompressionCodec})
	}
	return builder.Build()
}

// WriteResult contains the result of a write operation
type WriteResult struct {
	FilePath       string
	RecordsWritten int
	FileSize       int64
	WriteTime      time.Duration
}

// Write exports records to <parquet_base_path>/history/<name>.parquet,
// replacing any previous export with the same name.
func (pw *ParquetWriter) Write(ctx context.Context, records []models.ProbeRecord, name string) (*WriteResult, error) {
	startTime := time.Now()

	if err := pw.checkCancellation(ctx, "write start"); err != nil {
		return nil, err
	}

	filePath, err := pw.pathGenerator.GenerateExportFilePath(name)
	if err != nil {
		return nil, err
	}

	parquetRecords := make([]models.ParquetProbeRecord, 0, len(records))
	for _, record := range records {
		parquetRecords = append(parquetRecords, pw.transformer.TransformToParquetRecord(record))
	}

	if err := pw.checkCancellation(ctx, "before parquet write"); err != nil {
		return nil, err
	}

	recordsWritten, err := pw.writeToParquetFile(filePath, parquetRecords)
	if err != nil {
		return nil, err
	}

	fileSize := int64(0)
	if fileInfo, statErr := os.Stat(filePath); statErr == nil {
		fileSize = fileInfo.Size()
	}

	result := &WriteResult{
		FilePath:       filePath,
		RecordsWritten: recordsWritten,
		FileSize:       fileSize,
		WriteTime:      time.Since(startTime),
	}
	pw.logger.Info().
		Str("file_path", result.FilePath).
		Int("records_written", result.RecordsWritten).
		Dur("write_time", result.WriteTime).
		Msg("Wrote probe history to Parquet file")
	return result, nil
}

func (pw *ParquetWriter) checkCancellation(ctx context.Context, operation string) error {
	if result := CheckCancellationWithLog(ctx, pw.logger, operation); result.Cancelled {
		return result.Error
	}
	return nil
}

func (pw *ParquetWriter) writeToParquetFile(filePath string, records []models.ParquetProbeRecord) (int, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, common.WrapError(err, "failed to create/truncate parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.ParquetProbeRecord](file, pw.getCompressionOption())
	recordsWritten, err := writer.Write(records)
	if err != nil {
		_ = writer.Close()
		return 0, common.WrapError(err, "failed to write probe history to parquet file")
	}
	if err := writer.Close(); err != nil {
		return 0, common.WrapError(err, "failed to finalize parquet file")
	}
	return recordsWritten, nil
}

// getCompressionOption returns the compression option based on configuration
func (pw *ParquetWriter) getCompressionOption() parquet.WriterOption {
	switch pw.writerConfig.CompressionType {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}
