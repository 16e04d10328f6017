package passage

import (
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf8"

	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

// Hash field names for passage documents.
const (
	fieldContent      = "__content"
	fieldVector       = "__vector"
	fieldDocumentID   = "document_id"
	fieldDocumentName = "document_name"
	fieldSectionTitle = "section_title"
	fieldTokenCount   = "token_count"
	fieldContentLen   = "content_len"
)

// buildHashFields converts a domain Passage into a flat map[string]string for HSET.
// content_len is stored redundantly so FT.SEARCH can pre-filter short passages
// without fetching content.
func buildHashFields(p *dompas.Passage) map[string]string {
	return map[string]string{
		fieldContent:      p.Content(),
		fieldVector:       vectorToBytes(p.Embedding()),
		fieldDocumentID:   p.DocumentID(),
		fieldDocumentName: p.DocumentName(),
		fieldSectionTitle: p.SectionTitle(),
		fieldTokenCount:   strconv.Itoa(p.TokenCount()),
		fieldContentLen:   strconv.Itoa(utf8.RuneCountInString(p.Content())),
	}
}

// parseHashFields converts flat hash fields back into a domain Passage.
// Search paths skip the vector field, so the embedding may be nil.
func parseHashFields(id string, m map[string]string) dompas.Passage {
	tokenCount, _ := strconv.Atoi(m[fieldTokenCount])

	var vector []float32
	if raw, ok := m[fieldVector]; ok {
		vector = bytesToVector(raw)
	}

	return dompas.Reconstruct(
		id,
		m[fieldDocumentID],
		m[fieldDocumentName],
		m[fieldSectionTitle],
		m[fieldContent],
		vector,
		tokenCount,
	)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
