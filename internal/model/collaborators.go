package model

import "context"

// TextGenerator produces text from a prompt (an LLM chat completion).
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// JobSearcher queries a job-listing backend.
type JobSearcher interface {
	SearchJobs(ctx context.Context, query, location string) ([]JobListing, error)
}

// PostSearcher queries a web search backend for posts.
type PostSearcher interface {
	SearchPosts(ctx context.Context, query string) ([]Post, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// CaptionStore keeps reference captions and scores new text against them.
type CaptionStore interface {
	AddCaption(ctx context.Context, text string) error
	Similarity(ctx context.Context, text string, k int) (float64, error)
	Close() error
}
