// Package objectid reconciles the two _id encodings that coexist in the
// items collection: documents written by this service store the id as a
// 24-character hex string, while older documents carry a native BSON
// ObjectID. Every boundary of the application sees only the string form.
package objectid

import (
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// ErrInvalidObjectID is returned when a string does not match the
// 24-character hex ObjectID format.
var ErrInvalidObjectID = errors.New("invalid ObjectID format")

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsValidHex reports whether s is exactly 24 hexadecimal characters.
func IsValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

// Parse converts a display string into a native ObjectID. It fails with
// ErrInvalidObjectID when the string is not in the 24-hex format.
func Parse(s string) (primitive.ObjectID, error) {
	if !IsValidHex(s) {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidObjectID, s)
	}
	return primitive.ObjectIDFromHex(s)
}

// New generates a fresh ObjectID in its hex string form. New documents
// persist this string directly as _id.
func New() string {
	return primitive.NewObjectID().Hex()
}

// ID is the display form of an item identifier. It marshals to BSON as a
// plain string and unmarshals from either encoding found in the store.
type ID string

// MarshalBSONValue writes the id as a BSON string.
func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(id))
}

// UnmarshalBSONValue accepts both a BSON string and a native ObjectID,
// projecting either losslessly onto the display string.
func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("objectid: corrupt BSON string id")
		}
		*id = ID(s)
		return nil
	case bsontype.ObjectID:
		oid, _, ok := bsoncore.ReadObjectID(data)
		if !ok {
			return fmt.Errorf("objectid: corrupt BSON ObjectID")
		}
		*id = ID(oid.Hex())
		return nil
	default:
		return fmt.Errorf("objectid: cannot decode %s into an item id", t)
	}
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}
