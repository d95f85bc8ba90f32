// Package embedder abstracts embedding providers (text to fixed-dimension
// float32 vector) behind a small Provider interface and supplies clients for
// OpenAI-compatible and Gemini embedding APIs.
package embedder
