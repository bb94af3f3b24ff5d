package model

// Document holds the accumulated raw text of an indexed document. The
// chunk set is a derived projection of this text: retrain and append
// recompute it wholesale, they never patch individual chunks.
type Document struct {
	Filename   string        `json:"filename"`
	RawText    string        `json:"raw_text"`
	Strategy   ChunkStrategy `json:"chunk_strategy"`
	SourceType SourceType    `json:"source_type"`
	Mtime      int64         `json:"mtime"`
}

// PendingIngest records an ingest that was cut off by the wall-clock
// limit, with enough state for the resume job to pick it back up.
type PendingIngest struct {
	Filename  string        `json:"filename"`
	Strategy  ChunkStrategy `json:"chunk_strategy"`
	Processed int           `json:"processed"`
	Ctime     int64         `json:"ctime"`
}

// IndexResult reports what happened to one indexing submission.
type IndexResult struct {
	Attempted int  `json:"attempted"`
	Indexed   int  `json:"indexed"`
	Failed    int  `json:"failed"`
	Processed int  `json:"processed"`
	Remaining int  `json:"remaining"`
	Resumable bool `json:"resumable"`
}

type EmbeddingCache struct {
	ModelName   string    `json:"model_name"`
	TaskType    string    `json:"task_type"`
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}
