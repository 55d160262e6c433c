package formatter

import (
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"

	"github.com/starford/ansuz/internal/apperr"
)

// NoteChanges is the structured-output contract for the formatting prompt.
// Front and back are required; tags may be returned by the model but are
// never applied (see Service.Format).
type NoteChanges struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// ChangesSchema returns the JSON Schema sent as the guided_json constraint.
func ChangesSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return r.Reflect(&NoteChanges{})
}

// ParseChanges validates raw model output against the changes contract.
// Missing front or back is a schema violation, not a default: partially
// applied content must never reach a note.
func ParseChanges(raw string) (NoteChanges, error) {
	var wire struct {
		Front *string  `json:"front"`
		Back  *string  `json:"back"`
		Tags  []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return NoteChanges{}, &apperr.SchemaValidationError{Raw: raw, Err: err}
	}
	if wire.Front == nil || wire.Back == nil {
		return NoteChanges{}, &apperr.SchemaValidationError{Raw: raw, Err: errors.New("front and back are required")}
	}
	return NoteChanges{Front: *wire.Front, Back: *wire.Back, Tags: wire.Tags}, nil
}
