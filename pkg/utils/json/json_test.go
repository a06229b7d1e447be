package json

import (
	"bytes"
	"strings"
	"testing"
)

type verseDoc struct {
	Source  string `json:"source"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := verseDoc{Source: "bhagavad_gita", Chapter: 2, Verse: 47, Text: "कर्मण्येवाधिकारस्ते"}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out verseDoc
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out != in {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var out verseDoc
	if err := Unmarshal([]byte("{not json"), &out); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(map[string]int{"chapter": 18}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"chapter"`) {
		t.Errorf("unexpected encoder output: %s", buf.String())
	}

	var m map[string]int
	if err := NewDecoder(&buf).Decode(&m); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if m["chapter"] != 18 {
		t.Errorf("decoded chapter = %d, want 18", m["chapter"])
	}
}
