package naming

import (
	"path/filepath"
	"strings"
)

// Reserved suffixes. TempSuffix marks a conversion in progress; DoneSuffix
// marks an input that was converted and kept under the rename action.
const (
	TempSuffix = ".tmp"
	DoneSuffix = ".done"
)

// OutputPath returns <outputDir>/<input base name without extension>.<container>.
// Only the base name is mirrored; input directories are never recreated.
func OutputPath(inputPath, outputDir, container string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+"."+container)
}

// TempPath returns the in-progress path for outputPath.
func TempPath(outputPath string) string {
	return outputPath + TempSuffix
}

// DonePath returns the path an input is renamed to after conversion.
func DonePath(inputPath string) string {
	return inputPath + DoneSuffix
}
