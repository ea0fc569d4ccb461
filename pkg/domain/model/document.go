package model

import "time"

// Section is a structural section of a parsed document
type Section struct {
	Header  string
	Content string
}

// ParsedDocument is the plain-text form of a district document as produced
// by the external document-parsing collaborator. When Sections is non-empty
// the chunker uses structure-based chunking.
type ParsedDocument struct {
	ID         DocumentID
	DistrictID string
	Version    int
	Title      string
	SourceURL  string
	Content    string
	Sections   []Section
	ParsedAt   time.Time
}

// HasStructure reports whether the document carries detected sections
func (d *ParsedDocument) HasStructure() bool {
	return len(d.Sections) > 0
}
