package core

import "context"

// ChatProvider is the language-model collaborator used for structured
// extraction. Implementations are thin HTTP clients.
type ChatProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

// Embedder turns text into a query vector for the similarity index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
