package solve

import "testing"

func TestParse_StrictJSON(t *testing.T) {
	ans, err := Parse(`{"answer": 42, "answer_type": "number"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ans.Kind != KindNumber {
		t.Errorf("kind: got %q, want number", ans.Kind)
	}
	if ans.Value.(float64) != 42 {
		t.Errorf("value: got %v", ans.Value)
	}
}

func TestParse_MissingKindDefaultsToString(t *testing.T) {
	ans, err := Parse(`{"answer": "blue"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ans.Kind != KindString {
		t.Errorf("kind: got %q, want string", ans.Kind)
	}
}

func TestParse_SalvageFromProse(t *testing.T) {
	content := `Sure! Based on the data, here is the result:
{"answer": "Paris", "answer_type": "string"}
Let me know if you need anything else.`

	ans, err := Parse(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ans.Value != "Paris" {
		t.Errorf("value: got %v", ans.Value)
	}
}

func TestParse_NoAnswerObject(t *testing.T) {
	if _, err := Parse("I could not determine the answer."); err == nil {
		t.Fatal("expected error for answerless response")
	}
}

func TestParse_NullAnswer(t *testing.T) {
	if _, err := Parse(`{"answer": null, "answer_type": "string"}`); err == nil {
		t.Fatal("expected error for null answer value")
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []Kind{KindNumber, KindString, KindBool, KindObject, KindFileBase64} {
		if !validKind(k) {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if validKind("float") {
		t.Error("expected 'float' to be invalid")
	}
}
