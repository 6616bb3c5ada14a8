package datastore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/config"
	"github.com/aleister1102/devtargets/internal/datastore"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []models.ProbeRecord {
	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	return []models.ProbeRecord{
		{SessionID: "s1", Host: "localhost:8081", URL: "http://localhost:8081/json/list", Status: models.HostStatusReachable, TargetCount: 3, Timestamp: base, Duration: 0.5},
		{SessionID: "s2", Host: "localhost:8081", URL: "http://localhost:8081/json/list", Status: models.HostStatusError, Message: "HTTP 404", Timestamp: base.Add(time.Minute)},
	}
}

func TestParquetWriter_WriteAndRead(t *testing.T) {
	for _, codec := range []string{"zstd", "gzip", "snappy", "none"} {
		t.Run(codec, func(t *testing.T) {
			cfg := &config.StorageConfig{ParquetBasePath: t.TempDir(), CompressionCodec: codec}
			writer, err := datastore.NewParquetWriter(cfg, zerolog.Nop())
			require.NoError(t, err)

			result, err := writer.Write(context.Background(), sampleHistory(), "http://localhost:8081")
			require.NoError(t, err)
			assert.Equal(t, 2, result.RecordsWritten)
			assert.Equal(t, filepath.Join(cfg.ParquetBasePath, "history", "localhost_8081.parquet"), result.FilePath)
			assert.Greater(t, result.FileSize, int64(0))

			_, err = os.Stat(result.FilePath)
			require.NoError(t, err)

			records, err := datastore.NewParquetReader(cfg, zerolog.Nop()).ReadExport("http://localhost:8081")
			require.NoError(t, err)
			assert.Equal(t, sampleHistory(), records)
		})
	}
}

func TestParquetWriter_OverwritesExport(t *testing.T) {
	cfg := &config.StorageConfig{ParquetBasePath: t.TempDir()}
	writer, err := datastore.NewParquetWriter(cfg, zerolog.Nop())
	require.NoError(t, err)

	_, err = writer.Write(context.Background(), sampleHistory(), "snapshot")
	require.NoError(t, err)
	_, err = writer.Write(context.Background(), sampleHistory()[:1], "snapshot")
	require.NoError(t, err)

	records, err := datastore.NewParquetReader(cfg, zerolog.Nop()).ReadExport("snapshot")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParquetWriter_CancelledContext(t *testing.T) {
	cfg := &config.StorageConfig{ParquetBasePath: t.TempDir()}
	writer, err := datastore.NewParquetWriter(cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = writer.Write(ctx, sampleHistory(), "snapshot")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(cfg.ParquetBasePath, "history", "snapshot.parquet"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParquetWriterBuilder_Validation(t *testing.T) {
	_, err := datastore.NewParquetWriterBuilder(zerolog.Nop()).Build()
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "config", validationErr.Field)

	_, err = datastore.NewParquetWriter(&config.StorageConfig{}, zerolog.Nop())
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "parquet_base_path", validationErr.Field)
}

func TestParquetReader_MissingExport(t *testing.T) {
	cfg := &config.StorageConfig{ParquetBasePath: t.TempDir()}
	records, err := datastore.NewParquetReader(cfg, zerolog.Nop()).ReadExport("nothing")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"localhost:8081", "localhost_8081"},
		{"http://10.0.0.5:8081/path", "10.0.0.5_8081_path"},
		{"[::1]:8081", "1_8081"},
		{"", "all_hosts"},
		{"://", "all_hosts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, datastore.SanitizeFilename(tt.input), tt.input)
	}
}
