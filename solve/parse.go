package solve

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// salvageRe locates a JSON object carrying an "answer" key inside
// surrounding prose, for backends that ignore the JSON-only instruction.
var salvageRe = regexp.MustCompile(`(?s)\{[^{}]*"answer"[^{}]*\}`)

// Parse decodes a backend response in two stages: a strict JSON parse, then
// a regex salvage of an embedded answer object. Failure of both stages is
// an explicit error, never a silent default.
func Parse(content string) (*Answer, error) {
	var ans Answer
	if err := json.Unmarshal([]byte(content), &ans); err == nil && ans.Value != nil {
		if ans.Kind == "" {
			ans.Kind = KindString
		}
		return &ans, nil
	}

	m := salvageRe.FindString(content)
	if m == "" {
		return nil, fmt.Errorf("parse: no answer object in response")
	}
	ans = Answer{}
	if err := json.Unmarshal([]byte(m), &ans); err != nil {
		return nil, fmt.Errorf("parse: salvaged object: %w", err)
	}
	if ans.Value == nil {
		return nil, fmt.Errorf("parse: salvaged object has no answer value")
	}
	if ans.Kind == "" {
		ans.Kind = KindString
	}
	return &ans, nil
}
