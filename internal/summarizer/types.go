package summarizer

// Person is one participant's playful profile.
type Person struct {
	Name        string `json:"name" jsonschema:"required" jsonschema_description:"Sender name exactly as it appears in the input keys"`
	Animal      string `json:"animal" jsonschema:"required,enum=owl,enum=lion,enum=dolphin,enum=fox,enum=bear,enum=rabbit,enum=monkey,enum=tiger,enum=wolf,enum=eagle,enum=elephant,enum=penguin,enum=cat,enum=dog,enum=koala,enum=panda,enum=sheep"`
	Description string `json:"description" jsonschema:"required" jsonschema_description:"Why this animal fits, then two short lines about their vibe"`
}

// Summary is the response shape when the chat is small enough for per-person
// profiles.
type Summary struct {
	Summary string   `json:"summary" jsonschema:"required" jsonschema_description:"Three to five sentences on the vibe, drama and relationships, without quoting messages"`
	People  []Person `json:"people" jsonschema:"required"`
}

// SummaryOnly is the response shape for larger groups.
type SummaryOnly struct {
	Summary string `json:"summary" jsonschema:"required" jsonschema_description:"Three to five sentences on the vibe, drama and relationships, without quoting messages"`
}
