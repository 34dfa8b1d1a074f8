package corpus

import (
	"sort"
)

// Chunk is one bounded slice of composed corpus text with its embedding.
type Chunk struct {
	ID       string
	Position int
	Text     string
	Vector   []float32
}

// Index is an immutable set of embedded chunks. Instances are built whole
// and swapped in; they are never mutated after construction, which is what
// lets searches run against them without locking.
type Index struct {
	chunks []Chunk
}

func newIndex(chunks []Chunk) *Index {
	return &Index{chunks: chunks}
}

// Len returns the number of chunks in the index.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

type scoredChunk struct {
	chunk Chunk
	score float64
}

// search ranks every chunk against the query vector by cosine similarity
// and returns the top-k texts, best first. Chunks whose stored vector can't
// be compared (dimension drift after a model change) are skipped, not fatal.
func (ix *Index) search(queryVec []float32, k int) []string {
	if k <= 0 || len(ix.chunks) == 0 {
		return nil
	}

	scored := make([]scoredChunk, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		score, err := cosineSimilarity(queryVec, c.Vector)
		if err != nil {
			continue
		}
		scored = append(scored, scoredChunk{chunk: c, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].chunk.Position < scored[j].chunk.Position
	})

	if k > len(scored) {
		k = len(scored)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = scored[i].chunk.Text
	}
	return out
}
