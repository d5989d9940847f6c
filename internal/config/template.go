package config

// StandardTemplate is the built-in prompt template used when the config does
// not provide one. It renders the day-bucketed schedule as markdown-ish text
// suitable for pasting into an LLM conversation.
//
// The data root is {Days []calendar.Day}; see internal/prompt for rendering.
const StandardTemplate = `Here is your schedule summary. Please find the details below:
{{range .Days}}## Date: {{.Date}}

{{if .AllDayEvents}}### All-Day Events:
{{range .AllDayEvents}}- {{.Summary}}
  - (All Day)
  - Location: {{with .Location}}{{.}}{{else}}N/A{{end}}
  - Description: {{with .Description}}{{.}}{{else}}No description.{{end}}
  - Attendees:
{{if .Attendees}}{{range .Attendees}}      - {{.}}
{{end}}{{else}}    - (No attendees)
{{end}}{{end}}{{end}}
### Events:
{{if .TimedEvents}}{{range .TimedEvents}}- {{.Summary}}
  - Start: {{.Start}}
  - End:   {{.End}}
  - Location: {{with .Location}}{{.}}{{else}}N/A{{end}}
  - Description: {{with .Description}}{{.}}{{else}}No description.{{end}}
  - Attendees:
{{if .Attendees}}{{range .Attendees}}      - {{.}}
{{end}}{{else}}    - (No attendees)
{{end}}{{end}}{{else}}(No timed events)
{{end}}{{end}}`
