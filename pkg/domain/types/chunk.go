package types

import "fmt"

// ChunkType represents how a chunk was produced from its source document
type ChunkType string

const (
	ChunkTypeSection   ChunkType = "section"
	ChunkTypeSemantic  ChunkType = "semantic"
	ChunkTypeParagraph ChunkType = "paragraph"
	ChunkTypeOverlap   ChunkType = "overlap"
)

// IsValid checks if the chunk type is valid
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeSection, ChunkTypeSemantic, ChunkTypeParagraph, ChunkTypeOverlap:
		return true
	default:
		return false
	}
}

// String returns the string representation of the chunk type
func (t ChunkType) String() string {
	return string(t)
}

// ParseChunkType parses a string into a ChunkType
func ParseChunkType(s string) (ChunkType, error) {
	ct := ChunkType(s)
	if !ct.IsValid() {
		return "", fmt.Errorf("invalid chunk type: %s", s)
	}
	return ct, nil
}
