// Package llm defines the generation and embedding capabilities the query
// pipeline depends on. Providers live in subpackages.
package llm

import "context"

// Generator produces text for a prompt, synchronously. Implementations own
// their transport; callers own timeout policy via ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
