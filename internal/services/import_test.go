package services

import (
	"strings"
	"testing"
)

func TestParseDelimited(t *testing.T) {
	input := "\uFEFFEmail,First Name,Know Yourself Score\n" +
		"ada@example.com,Ada,101.5\n" +
		"bob@example.com,Bob\n"

	rows, err := ParseDelimited(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseDelimited: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// The BOM must not leak into the first header name.
	if rows[0]["Email"] != "ada@example.com" {
		t.Fatalf("first header corrupted: %+v", rows[0])
	}
	if rows[0]["Know Yourself Score"] != "101.5" {
		t.Fatalf("score column not mapped: %+v", rows[0])
	}
	// A short record pads missing trailing cells with empty strings.
	if v, ok := rows[1]["Know Yourself Score"]; !ok || v != "" {
		t.Fatalf("short record not padded: %+v", rows[1])
	}
}

func TestParseDelimitedEmptyFile(t *testing.T) {
	if _, err := ParseDelimited(strings.NewReader("")); err == nil {
		t.Fatalf("expected an error for an empty file")
	}
}

func TestParseDelimitedHeaderOnly(t *testing.T) {
	rows, err := ParseDelimited(strings.NewReader("Email,First Name\n"))
	if err != nil {
		t.Fatalf("ParseDelimited: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
