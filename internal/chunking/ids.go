package chunking

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DeriveIDs infers identifiers from a document's path:
//   - docID: the last underscore-delimited segment of the filename stem,
//     e.g. "PRE_FIX_12345.txt" -> "12345"
//   - sourceGroup: the immediate parent directory name, e.g. "002"
//
// The trailing segment is taken as-is, there is no requirement that it is
// numeric.
func DeriveIDs(path string) (docID, sourceGroup string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	docID = parts[len(parts)-1]
	sourceGroup = filepath.Base(filepath.Dir(path))
	return docID, sourceGroup
}

// ChunkID builds the chunk identifier for the given ordinal, 1-based,
// zero-padded to three digits: "12345" + 7 -> "12345_c007".
func ChunkID(docID string, ordinal int) string {
	return fmt.Sprintf("%s_c%03d", docID, ordinal)
}
