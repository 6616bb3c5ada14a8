package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/rs/zerolog"
)

const historyExportDir = "history"

var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// FilePathGenerator handles file path generation for history exports
type FilePathGenerator struct {
	logger   zerolog.Logger
	basePath string
}

// NewFilePathGenerator creates a new file path generator
func NewFilePathGenerator(basePath string, logger zerolog.Logger) *FilePathGenerator {
	return &FilePathGenerator{
		logger:   logger.With().Str("component", "FilePathGenerator").Logger(),
		basePath: basePath,
	}
}

// GenerateExportFilePath returns the Parquet file path for an export named
// after name, creating the export directory when needed.
func (fpg *FilePathGenerator) GenerateExportFilePath(name string) (string, error) {
	exportDir := filepath.Join(fpg.basePath, historyExportDir)
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", common.WrapError(err, "failed to create history export directory: "+exportDir)
	}

	filePath := filepath.Join(exportDir, fmt.Sprintf("%s.parquet", SanitizeFilename(name)))
	fpg.logger.Debug().Str("name", name).Str("file_path", filePath).Msg("Generated export file path")
	return filePath, nil
}

// SanitizeFilename turns a host or URL into a safe file name.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}
	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "all_hosts"
	}
	return name
}
