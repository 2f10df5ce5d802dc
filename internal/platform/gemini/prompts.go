package gemini

// Default prompt templates. Each instructs the model to answer with JSON
// matching the schemas in types.go. The identity seed, when present, keeps
// the output aligned with the user's stated self-concept.

const summaryPromptTemplate = `You are a reflective writing assistant for a personal-growth app.
{{if .IdentitySeed}}The user describes who they are becoming as: "{{.IdentitySeed}}"
{{end}}Summarize the following content in 2-4 sentences, focused on what matters
for the user's growth. Respond with JSON: {"summary": "..."}

Content:
{{.Text}}`

const insightsPromptTemplate = `You are a reflective writing assistant for a personal-growth app.
{{if .IdentitySeed}}The user describes who they are becoming as: "{{.IdentitySeed}}"
{{end}}Extract up to 5 short, standalone insights from the following content.
Each insight is one or two sentences the user could act on or remember.
If the content yields no meaningful insights, return an empty list.
Respond with JSON: {"insights": [{"text": "...", "tags": ["..."]}]}

Content:
{{.Text}}`

const pathPromptTemplate = `You are a curriculum designer for a personal-growth app.
{{if .IdentitySeed}}The user describes who they are becoming as: "{{.IdentitySeed}}"
{{end}}Design a 7-day learning path for the topic "{{.Topic}}". Each day has a
short title and a body of 2-5 sentences describing what to study or
practice that day, building on previous days.
Respond with JSON: {"days": [{"title": "...", "body": "..."}]}`
