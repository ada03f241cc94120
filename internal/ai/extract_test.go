package ai

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject_Raw(t *testing.T) {
	in := `{"patterns": [{"title": "a"}]}`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Fatalf("got %q, want %q", got, in)
	}
}

func TestExtractJSONObject_Fenced(t *testing.T) {
	in := "Here is the analysis:\n```json\n{\"patterns\": []}\n```\nHope that helps!"
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"patterns": []}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObject_BareFence(t *testing.T) {
	in := "```\n{\"ok\": true}\n```"
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"ok": true}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObject_ProseWrapped(t *testing.T) {
	in := `Sure! Based on the entries, {"title": "Morning clarity", "note": "uses {braces} in text"} is my answer.`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]string
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("extracted text is not valid JSON: %v\n%s", err, got)
	}
	if parsed["title"] != "Morning clarity" {
		t.Fatalf("got %+v", parsed)
	}
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	in := `{"description": "he said \"{\" and left", "n": 1} trailing`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("extracted text is not valid JSON: %v\n%s", err, got)
	}
}

func TestExtractJSONObject_Nested(t *testing.T) {
	in := `noise {"outer": {"inner": [1, 2, {"deep": true}]}} more noise`
	got, err := ExtractJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"outer": {"inner": [1, 2, {"deep": true}]}}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	for _, in := range []string{"", "no json here", "{unclosed", "```\nnothing\n```"} {
		if _, err := ExtractJSONObject(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
