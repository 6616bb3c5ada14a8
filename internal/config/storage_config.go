package config

// StorageConfig defines where registry state and probe history are kept
type StorageConfig struct {
	DatabasePath     string `json:"database_path,omitempty" yaml:"database_path,omitempty" validate:"required"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd gzip snappy none"`
	ParquetBasePath  string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	RecordHistory    bool   `json:"record_history" yaml:"record_history"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DatabasePath:     DefaultStorageDatabasePath,
		CompressionCodec: DefaultStorageCompressionCodec,
		ParquetBasePath:  DefaultStorageParquetBasePath,
		RecordHistory:    true,
	}
}
