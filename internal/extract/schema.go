// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the structural contract for a raw model reply. It pins
// field types only; question-set completeness and the evidence invariants
// are semantic checks the normalizer owns, where they produce failure
// messages naming the offending question.
const responseSchema = `{
  "type": "object",
  "required": ["citation", "title", "extractions"],
  "properties": {
    "source_number": {"type": "integer"},
    "filename": {"type": "string"},
    "citation": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "study_type": {"type": ["string", "null"]},
    "sample": {
      "type": ["object", "null"],
      "properties": {
        "n": {"type": ["number", "null"]},
        "age_range": {"type": ["string", "null"]},
        "population": {"type": ["string", "null"]},
        "notes": {"type": ["string", "null"]}
      }
    },
    "extractions": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["has_evidence"],
        "properties": {
          "has_evidence": {"type": "boolean"},
          "answer": {"type": ["string", "null"]},
          "supporting_quotes": {"type": ["array", "null"]},
          "effect_size": {"type": ["string", "null"]},
          "direction": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("response.json", responseSchema)

// validateShape checks a raw reply against the structural schema.
func validateShape(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshaling reply: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match expected shape: %w", err)
	}
	return nil
}
