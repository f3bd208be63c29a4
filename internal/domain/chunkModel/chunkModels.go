package chunkModel

// Document is one raw OCR text file picked up by the directory scan.
// It only lives long enough to be cleaned and chunked.
type Document struct {
	Path        string
	SourceGroup string //name of the input directory the file came from
	RawText     string
}

// Chunk is the unit of output for both sinks. The JSON tags double as the
// property names sent to the vector store and as the replay file schema.
type Chunk struct {
	DocID       string `json:"doc_id"`
	ChunkID     string `json:"chunk_id"`
	SourceGroup string `json:"source_group"`
	Text        string `json:"text"`
}

// Properties returns the chunk as the property mapping submitted to the
// ingestion endpoint.
func (c Chunk) Properties() map[string]any {
	return map[string]any{
		"doc_id":       c.DocID,
		"chunk_id":     c.ChunkID,
		"source_group": c.SourceGroup,
		"text":         c.Text,
	}
}

// CSVRecord returns the chunk as a row for the csv sink, in header order:
// doc_id, chunk_id, source_group, text.
func (c Chunk) CSVRecord() []string {
	return []string{c.DocID, c.ChunkID, c.SourceGroup, c.Text}
}
