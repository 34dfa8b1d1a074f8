package corpus

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	vectorHeaderSize = 4
	vectorValueSize  = 4
)

// encodeVector packs a float32 vector into a blob:
// [4-byte little-endian dimension][N x 4-byte little-endian float32].
func encodeVector(vector []float32) ([]byte, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("encode vector: empty vector")
	}
	blob := make([]byte, vectorHeaderSize+len(vector)*vectorValueSize)
	binary.LittleEndian.PutUint32(blob[:vectorHeaderSize], uint32(len(vector)))
	offset := vectorHeaderSize
	for _, v := range vector {
		binary.LittleEndian.PutUint32(blob[offset:offset+vectorValueSize], math.Float32bits(v))
		offset += vectorValueSize
	}
	return blob, nil
}

// decodeVector unpacks a blob created by encodeVector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) < vectorHeaderSize {
		return nil, fmt.Errorf("decode vector: blob too short: %d bytes", len(blob))
	}
	dim := int(binary.LittleEndian.Uint32(blob[:vectorHeaderSize]))
	if dim <= 0 || len(blob) != vectorHeaderSize+dim*vectorValueSize {
		return nil, fmt.Errorf("decode vector: dimension %d does not match payload %d", dim, len(blob)-vectorHeaderSize)
	}
	vector := make([]float32, dim)
	offset := vectorHeaderSize
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[offset : offset+vectorValueSize]))
		offset += vectorValueSize
	}
	return vector, nil
}

// cosineSimilarity ranks search hits. Zero-norm vectors score zero rather
// than erroring, so one degenerate chunk can't sink a whole search.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("cosine similarity: empty vector")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
