package chunker_test

import (
	"strings"
	"testing"

	"github.com/edmon-lab/mentor/pkg/domain/model"
	"github.com/edmon-lab/mentor/pkg/domain/types"
	"github.com/edmon-lab/mentor/pkg/service/chunker"
	"github.com/m-mizutani/gt"
)

// testConfig keeps chunk sizes small so fixtures stay readable
func testConfig() chunker.Config {
	return chunker.Config{
		MinChunkSize: 20,
		MaxChunkSize: 60,
		OverlapSize:  10,
	}
}

func repeatSentences(sentence string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentence
	}
	return strings.Join(parts, " ")
}

func TestChunkerValidation(t *testing.T) {
	t.Run("rejects nil document", func(t *testing.T) {
		c := gt.R1(chunker.New(testConfig())).NoError(t)
		_, err := c.Chunk(nil)
		gt.Error(t, err).Is(chunker.ErrNilDocument)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		c := gt.R1(chunker.New(testConfig())).NoError(t)
		_, err := c.Chunk(&model.ParsedDocument{ID: "doc-1", Content: "   \n"})
		gt.Error(t, err).Is(chunker.ErrEmptyDocument)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		_, err := chunker.New(chunker.Config{MinChunkSize: 100, MaxChunkSize: 50, OverlapSize: 10})
		gt.Error(t, err).Is(chunker.ErrInvalidConfig)

		_, err = chunker.New(chunker.Config{MinChunkSize: 10, MaxChunkSize: 50, OverlapSize: -1})
		gt.Error(t, err).Is(chunker.ErrInvalidConfig)
	})
}

func TestChunkerSemantic(t *testing.T) {
	c := gt.R1(chunker.New(testConfig())).NoError(t)

	sentence := "Students must submit the permission form before the field trip date."
	doc := &model.ParsedDocument{
		ID:      "doc-semantic",
		Content: repeatSentences(sentence, 9),
	}

	result := gt.R1(c.Chunk(doc)).NoError(t)
	gt.Value(t, result.Strategy).Equal("semantic")
	gt.Value(t, result.DocumentID).Equal(model.DocumentID("doc-semantic"))

	primary := result.PrimaryChunks()
	overlaps := result.OverlapChunks()
	gt.Number(t, len(primary)).Greater(1)

	t.Run("primary chunks respect the maximum size", func(t *testing.T) {
		for _, ch := range primary {
			gt.Number(t, ch.TokenEstimate).LessOrEqual(testConfig().MaxChunkSize)
			gt.Value(t, ch.Metadata.Type).Equal(types.ChunkTypeSemantic)
		}
	})

	t.Run("one overlap chunk between each adjacent primary pair", func(t *testing.T) {
		gt.Array(t, overlaps).Length(len(primary) - 1)
		for _, ch := range overlaps {
			gt.Value(t, ch.Metadata.Type).Equal(types.ChunkTypeOverlap)
		}
	})

	t.Run("chunk indices are sequential", func(t *testing.T) {
		for i, ch := range result.Chunks {
			gt.Number(t, ch.Metadata.Index).Equal(i)
		}
	})
}

func TestChunkerOversizedSentence(t *testing.T) {
	c := gt.R1(chunker.New(testConfig())).NoError(t)

	// One indivisible sentence far above the maximum must still come out
	// as a single chunk
	long := "The district transportation department coordinates bus routes across " +
		strings.Repeat("all elementary and secondary campuses including ", 8) +
		"the annex buildings."
	doc := &model.ParsedDocument{ID: "doc-long", Content: long}

	result := gt.R1(c.Chunk(doc)).NoError(t)
	primary := result.PrimaryChunks()
	gt.Array(t, primary).Length(1)
	gt.Number(t, primary[0].TokenEstimate).Greater(testConfig().MaxChunkSize)
}

func TestChunkerStructured(t *testing.T) {
	c := gt.R1(chunker.New(testConfig())).NoError(t)

	doc := &model.ParsedDocument{
		ID: "doc-structured",
		Sections: []model.Section{
			{Header: "Attendance Policy", Content: "Students arrive by 8 a.m. daily."},
			{Header: "Grading Scale", Content: "Grades follow the district scale."},
		},
	}
	doc.Content = doc.Sections[0].Content + "\n\n" + doc.Sections[1].Content

	result := gt.R1(c.Chunk(doc)).NoError(t)
	gt.Value(t, result.Strategy).Equal("structure")

	primary := result.PrimaryChunks()
	gt.Array(t, primary).Length(2)

	t.Run("small sections become one chunk each with their header", func(t *testing.T) {
		gt.Value(t, primary[0].Metadata.Type).Equal(types.ChunkTypeSection)
		gt.Value(t, primary[0].Metadata.SectionHeader).Equal("Attendance Policy")
		gt.Value(t, primary[1].Metadata.SectionHeader).Equal("Grading Scale")
	})

	t.Run("cross-section overlap carries no header", func(t *testing.T) {
		for _, ch := range result.OverlapChunks() {
			gt.Value(t, ch.Metadata.SectionHeader).Equal("")
		}
	})
}

func TestChunkerOversizedSection(t *testing.T) {
	c := gt.R1(chunker.New(testConfig())).NoError(t)

	paragraph := "Families may appeal an enrollment decision within ten school days. " +
		"The appeal must be filed in writing with the campus principal."
	section := strings.Join([]string{paragraph, paragraph, paragraph}, "\n\n")

	doc := &model.ParsedDocument{
		ID: "doc-big-section",
		Sections: []model.Section{
			{Header: "Enrollment Appeals", Content: section},
		},
		Content: section,
	}

	result := gt.R1(c.Chunk(doc)).NoError(t)
	primary := result.PrimaryChunks()
	gt.Array(t, primary).Length(3)

	t.Run("section header is propagated to every sub-chunk", func(t *testing.T) {
		for _, ch := range primary {
			gt.Value(t, ch.Metadata.SectionHeader).Equal("Enrollment Appeals")
			gt.Value(t, ch.Metadata.Type).Equal(types.ChunkTypeParagraph)
			gt.Number(t, ch.TokenEstimate).LessOrEqual(testConfig().MaxChunkSize)
		}
	})

	t.Run("same-section overlaps keep the header", func(t *testing.T) {
		overlaps := result.OverlapChunks()
		gt.Array(t, overlaps).Length(2)
		for _, ch := range overlaps {
			gt.Value(t, ch.Metadata.SectionHeader).Equal("Enrollment Appeals")
		}
	})
}

func TestChunkerNoOverlapWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.OverlapSize = 0
	c := gt.R1(chunker.New(cfg)).NoError(t)

	sentence := "Report absences through the parent portal before the first bell."
	doc := &model.ParsedDocument{ID: "doc-no-overlap", Content: repeatSentences(sentence, 9)}

	result := gt.R1(c.Chunk(doc)).NoError(t)
	gt.Array(t, result.OverlapChunks()).Length(0)
	gt.Number(t, len(result.PrimaryChunks())).Greater(1)
}
