// Package gemini implements the generation interfaces using Google's
// Gemini API.
package gemini

// promptData is the data passed to the prompt templates.
type promptData struct {
	Text         string
	IdentitySeed string
	Topic        string
}

// summarySchema is the expected JSON structure of a summarization response.
type summarySchema struct {
	// Summary is a short prose summary of the input text.
	Summary string `json:"summary"`
}

// insightsSchema is the expected JSON structure of an insight-extraction
// response.
type insightsSchema struct {
	Insights []insightSchema `json:"insights"`
}

// insightSchema is a single extracted insight in the API response.
type insightSchema struct {
	// Text is the short note itself.
	Text string `json:"text"`

	// Tags are optional topical labels for the insight.
	Tags []string `json:"tags,omitempty"`
}

// pathSchema is the expected JSON structure of a learning-path response.
type pathSchema struct {
	Days []pathDaySchema `json:"days"`
}

// pathDaySchema is a single curriculum day in the API response.
type pathDaySchema struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
