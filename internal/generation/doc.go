// Package generation defines the interface and error taxonomy for the LLM
// gateway boundary. The Gemini implementation lives in
// internal/platform/gemini.
package generation
