package model

import (
	"time"

	"github.com/psiu/items-api/internal/objectid"
)

// Status is the workflow state of an item.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses lists every valid status, in workflow order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Item is the persisted tracker record. Soft deletion flips Available to
// false; records with the field absent predate soft deletion and count as
// visible.
type Item struct {
	ID          objectid.ID `bson:"_id" json:"_id"`
	Title       string      `bson:"title" json:"title"`
	Description string      `bson:"description" json:"description"`
	Status      Status      `bson:"status" json:"status"`
	Priority    int         `bson:"priority" json:"priority"`
	Available   bool        `bson:"available" json:"available"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
}

// ItemPatch carries the fields of a partial update. Nil fields are absent
// from the resulting $set document, so a patch only ever touches what the
// caller supplied.
type ItemPatch struct {
	Title       *string `bson:"title,omitempty" json:"title,omitempty"`
	Description *string `bson:"description,omitempty" json:"description,omitempty"`
	Status      *Status `bson:"status,omitempty" json:"status,omitempty"`
	Priority    *int    `bson:"priority,omitempty" json:"priority,omitempty"`
	Available   *bool   `bson:"available,omitempty" json:"available,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Available == nil
}

// ItemInput is the untrusted payload for create and update requests. Every
// field is optional so that an absent field can be told apart from a zero
// value. Priority is a raw JSON number; integrality is a validation rule,
// not a decoding concern.
type ItemInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *float64   `json:"priority"`
	Available   *bool      `json:"available"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// IsEmpty reports whether the input carries no fields at all.
func (in ItemInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.Available == nil && in.CreatedAt == nil
}
