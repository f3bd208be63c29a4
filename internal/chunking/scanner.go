package chunking

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chunkflow/internal/domain/chunkModel"
	"chunkflow/pkg/logger_i"
)

// CollectTxtPaths gathers every *.txt file from the input directories.
// Directories are processed in the configured order, files within each
// directory in sorted name order. A missing or unreadable directory is a
// warning, not an error; the run continues with the rest.
func CollectTxtPaths(dirs []string, log *logger_i.Logger) []string {
	var all []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Warn("Input directory not found or not a directory, skipping", "dir", dir)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			log.Warn("Could not list input directory, skipping", "dir", dir, "error", err)
			continue
		}
		sort.Strings(matches)
		all = append(all, matches...)
	}
	return all
}

// ReadDocument loads one text file. Decoding is best effort: bytes that are
// not valid UTF-8 are dropped rather than failing the run.
func ReadDocument(path string) (chunkModel.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return chunkModel.Document{}, err
	}
	return chunkModel.Document{
		Path:        path,
		SourceGroup: filepath.Base(filepath.Dir(path)),
		RawText:     strings.ToValidUTF8(string(raw), ""),
	}, nil
}
