package core

import (
	"strings"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestNewIDIsParseable checks that generated IDs survive ParseID
func TestNewIDIsParseable(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	if err != nil {
		t.Fatalf("ParseID(%q) failed: %v", id, err)
	}
	if parsed != id {
		t.Errorf("Expected %s, got %s", id, parsed)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", false},
		{"padded uuid", "  550e8400-e29b-41d4-a716-446655440000 ", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"not a uuid", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("x").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestBlobNameKeepsExtension(t *testing.T) {
	a := BlobName(".CSV")
	b := BlobName(".CSV")
	if !strings.HasSuffix(a, ".csv") {
		t.Errorf("Expected lowercase .csv suffix, got %s", a)
	}
	if a == b {
		t.Errorf("Expected distinct blob names, got %s twice", a)
	}
	if strings.Contains(a, "-") {
		t.Errorf("Expected hex uuid without dashes, got %s", a)
	}
}

func TestNotFoundErrors(t *testing.T) {
	if !IsNotFoundError(ErrBlobNotFound) {
		t.Error("ErrBlobNotFound should be a not-found error")
	}
	if !IsNotFoundError(NewNotFoundError("file", "abc")) {
		t.Error("NewNotFoundError should be a not-found error")
	}
	if IsNotFoundError(ErrAlreadyExists) {
		t.Error("ErrAlreadyExists should not be a not-found error")
	}
}
