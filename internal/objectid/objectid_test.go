package objectid

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsValidHex(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"lowercase hex", "507f1f77bcf86cd799439011", true},
		{"uppercase hex", "507F1F77BCF86CD799439011", true},
		{"mixed case", "507f1F77bcf86CD799439011", true},
		{"too short", "507f1f77bcf86cd79943901", false},
		{"too long", "507f1f77bcf86cd7994390111", false},
		{"non-hex characters", "507f1f77bcf86cd79943901z", false},
		{"empty", "", false},
		{"plain string id", "item-20240115-001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidHex(tt.id); got != tt.valid {
				t.Errorf("IsValidHex(%q) = %v, want %v", tt.id, got, tt.valid)
			}
		})
	}
}

func TestParse(t *testing.T) {
	const hex = "507f1f77bcf86cd799439011"

	oid, err := Parse(hex)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", hex, err)
	}
	if oid.Hex() != hex {
		t.Errorf("round trip mismatch: got %q, want %q", oid.Hex(), hex)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, id := range []string{"", "not-an-objectid", "507f1f77bcf86cd79943901"} {
		if _, err := Parse(id); !errors.Is(err, ErrInvalidObjectID) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidObjectID", id, err)
		}
	}
}

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if !IsValidHex(id) {
			t.Fatalf("New() produced an invalid id: %q", id)
		}
		if seen[id] {
			t.Fatalf("New() produced a duplicate id: %q", id)
		}
		seen[id] = true
	}
}

type stringDoc struct {
	ID string `bson:"_id"`
}

type nativeDoc struct {
	ID primitive.ObjectID `bson:"_id"`
}

type displayDoc struct {
	ID ID `bson:"_id"`
}

func TestID_DecodesStringEncoding(t *testing.T) {
	const id = "507f1f77bcf86cd799439011"

	raw, err := bson.Marshal(stringDoc{ID: id})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc displayDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(doc.ID) != id {
		t.Errorf("decoded id = %q, want %q", doc.ID, id)
	}
}

func TestID_DecodesNativeEncoding(t *testing.T) {
	oid := primitive.NewObjectID()

	raw, err := bson.Marshal(nativeDoc{ID: oid})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc displayDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(doc.ID) != oid.Hex() {
		t.Errorf("decoded id = %q, want %q", doc.ID, oid.Hex())
	}
}

func TestID_MarshalsAsString(t *testing.T) {
	const id = "507f1f77bcf86cd799439011"

	raw, err := bson.Marshal(displayDoc{ID: ID(id)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// New documents must persist the string encoding, never the native one.
	var doc stringDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal into string _id: %v", err)
	}
	if doc.ID != id {
		t.Errorf("persisted id = %q, want %q", doc.ID, id)
	}
}
