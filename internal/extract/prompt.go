package extract

import (
	"fmt"
	"time"
)

const promptTemplate = `Extract calendar events from the text below. The current date and time is %s.

Reply with a JSON object that has exactly one key, "events", holding an array of event objects.
Every event object has these properties:
- "title": (string) short name of the event.
- "courseName": (string) name or code of the course the event belongs to, e.g. "COMP 101" or "History of Art". Use "General" when no course can be identified.
- "date": (string) the date as YYYY-MM-DD. Resolve relative dates such as "tomorrow" or "next Friday" against the current date.
- "time": (string or null) time of day as "HH:MM AM" or "HH:MM PM". Use null when no time is given.
- "desc": (string or null) any extra details about the event. Use null when there are none.

If the text contains no events, reply with {"events": []}.
Never invent values: when a detail is not in the text, use null.

Example
Text: "For Intro to Psychology (PSYC 101), the midterm is next Tuesday at 4pm. It covers chapters 1-5."
JSON:
{
  "events": [
    {
      "title": "Midterm",
      "courseName": "Intro to Psychology (PSYC 101)",
      "date": "2024-07-30",
      "time": "04:00 PM",
      "desc": "Covers chapters 1-5."
    }
  ]
}

Text to process: %q
`

// BuildPrompt embeds now and the source text into the extraction
// instructions.
func BuildPrompt(now time.Time, text string) string {
	return fmt.Sprintf(promptTemplate, now.Format(time.RFC3339), text)
}
