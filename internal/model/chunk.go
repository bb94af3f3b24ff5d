package model

type ChunkType string

const (
	ChunkTypeWord     ChunkType = "word"
	ChunkTypePhrase   ChunkType = "phrase"
	ChunkTypeSentence ChunkType = "sentence"
)

type ChunkStrategy string

const (
	StrategyWord     ChunkStrategy = "word"
	StrategySentence ChunkStrategy = "sentence"
	StrategySmart    ChunkStrategy = "smart"
)

type SourceType string

const (
	SourceUploaded    SourceType = "uploaded"
	SourceAutoLearned SourceType = "auto-learned"
	SourceManual      SourceType = "manual"
)

// AutoLearnedFilename is the single logical document that accumulates
// accepted generated suggestions.
const AutoLearnedFilename = "auto-learned.txt"

type Chunk struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	ChunkMetadata
}

type ChunkMetadata struct {
	Filename    string        `json:"filename"`
	ChunkIndex  int           `json:"chunk_index"`
	TotalChunks int           `json:"total_chunks"`
	ChunkType   ChunkType     `json:"chunk_type"`
	Strategy    ChunkStrategy `json:"chunk_strategy"`
	SourceType  SourceType    `json:"source_type"`
	Ctime       int64         `json:"created_at"`
}

// ScoredChunk is a search hit: the chunk plus its normalized cosine
// similarity and whether the literal hint matched its content.
type ScoredChunk struct {
	Chunk
	Similarity float32 `json:"similarity"`
	Literal    bool    `json:"literal"`
}

type DocumentStat struct {
	Filename   string     `json:"filename"`
	SourceType SourceType `json:"source_type"`
	ChunkCount int        `json:"chunk_count"`
	Mtime      int64      `json:"mtime"`
}
