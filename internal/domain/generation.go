package domain

import "context"

// Chunk is a single fragment of streamed generation output.
// A non-nil Err terminates the stream.
type Chunk struct {
	Text string
	Err  error
}

// Generator is the generation boundary: prompt parts in, lazy chunk stream out.
// The stream is finite, single-pass and not restartable. groundex only
// controls the context text and provenance it hands over, not the model.
type Generator interface {
	Stream(ctx context.Context, instructions, contextText, query string) (<-chan Chunk, error)
}
