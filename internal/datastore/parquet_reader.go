package datastore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aleister1102/devtargets/internal/config"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetReader reads probe history exports written by ParquetWriter.
type ParquetReader struct {
	storageConfig *config.StorageConfig
	logger        zerolog.Logger
}

// NewParquetReader creates a new ParquetReader.
func NewParquetReader(cfg *config.StorageConfig, logger zerolog.Logger) *ParquetReader {
	if cfg == nil || cfg.ParquetBasePath == "" {
		logger.Warn().Msg("ParquetReader: StorageConfig or ParquetBasePath is not properly configured.")
	}
	return &ParquetReader{
		storageConfig: cfg,
		logger:        logger.With().Str("module", "ParquetReader").Logger(),
	}
}

// ReadExport returns the records of the export called name. A missing export
// yields no records and no error.
func (pr *ParquetReader) ReadExport(name string) ([]models.ProbeRecord, error) {
	if pr.storageConfig == nil {
		return nil, fmt.Errorf("parquet reader has no storage config")
	}
	filePath := filepath.Join(pr.storageConfig.ParquetBasePath, historyExportDir, SanitizeFilename(name)+".parquet")
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		pr.logger.Info().Str("file", filePath).Msg("No history export found")
		return nil, nil
	}
	return pr.readFile(filePath)
}

func (pr *ParquetReader) readFile(filePath string) ([]models.ProbeRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		pr.logger.Error().Err(err).Str("file", filePath).Msg("Failed to open parquet file")
		return nil, fmt.Errorf("failed to open parquet file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	var records []models.ProbeRecord
	for {
		row := models.ParquetProbeRecord{}
		if err := reader.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			pr.logger.Error().Err(err).Str("file", filePath).Msg("Failed to read row from parquet file")
			return nil, fmt.Errorf("failed to read row from %s: %w", filePath, err)
		}
		records = append(records, row.ToProbeRecord())
	}

	pr.logger.Debug().Int("record_count", len(records)).Str("file", filePath).Msg("Read records from Parquet file")
	return records, nil
}
