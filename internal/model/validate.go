package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 80
	descriptionMaxLen = 500

	// DefaultPriority is applied when a creation payload omits priority.
	DefaultPriority = 3
)

// NewItem builds a fully populated Item from a creation payload. All rules
// are checked and every violation is reported together. The id is left
// empty for the repository to assign. CreatedAt may be supplied by the
// caller (seeding) and defaults to the current time.
func NewItem(input ItemInput) (*Item, error) {
	v := newValidator()

	title := v.title(input, false)
	description := v.description(input)
	status := v.status(input)
	priority := v.priority(input)

	if input.Available != nil {
		v.add("available cannot be set on create")
	}

	if err := v.err(); err != nil {
		return nil, err
	}

	item := &Item{
		Title:     *title,
		Status:    StatusTodo,
		Priority:  DefaultPriority,
		Available: true,
	}
	if description != nil {
		item.Description = *description
	}
	if status != nil {
		item.Status = *status
	}
	if priority != nil {
		item.Priority = *priority
	}
	if input.CreatedAt != nil {
		item.CreatedAt = *input.CreatedAt
	} else {
		item.CreatedAt = time.Now().UTC()
	}
	return item, nil
}

// NewPatch builds a partial-update patch from an update payload. Fields
// absent from the input stay absent from the patch; present fields obey the
// same rules as creation. No defaulting happens here.
func NewPatch(input ItemInput) (*ItemPatch, error) {
	v := newValidator()

	title := v.title(input, true)
	description := v.description(input)
	status := v.status(input)
	priority := v.priority(input)

	if err := v.err(); err != nil {
		return nil, err
	}

	return &ItemPatch{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		Available:   input.Available,
	}, nil
}

type validator struct {
	violations []string
}

func newValidator() *validator {
	return &validator{}
}

func (v *validator) add(msg string) {
	v.violations = append(v.violations, msg)
}

func (v *validator) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

func (v *validator) title(input ItemInput, isUpdate bool) *string {
	if input.Title == nil {
		if !isUpdate {
			v.add("title is required")
		}
		return nil
	}
	title := strings.TrimSpace(*input.Title)
	if !isUpdate && title == "" {
		v.add("title is required")
	}
	if len([]rune(title)) < titleMinLen || len([]rune(title)) > titleMaxLen {
		v.add(fmt.Sprintf("title must be between %d and %d characters", titleMinLen, titleMaxLen))
	}
	return &title
}

func (v *validator) description(input ItemInput) *string {
	if input.Description == nil {
		return nil
	}
	description := strings.TrimSpace(*input.Description)
	if len([]rune(description)) > descriptionMaxLen {
		v.add(fmt.Sprintf("description must be at most %d characters", descriptionMaxLen))
	}
	return &description
}

func (v *validator) status(input ItemInput) *Status {
	if input.Status == nil {
		return nil
	}
	status := Status(*input.Status)
	if !status.IsValid() {
		names := make([]string, len(Statuses))
		for i, s := range Statuses {
			names[i] = string(s)
		}
		v.add(fmt.Sprintf("status must be one of %s", strings.Join(names, ", ")))
	}
	return &status
}

func (v *validator) priority(input ItemInput) *int {
	if input.Priority == nil {
		return nil
	}
	raw := *input.Priority
	if raw != math.Trunc(raw) || raw < 1 || raw > 5 {
		v.add("priority must be an integer between 1 and 5")
	}
	priority := int(raw)
	return &priority
}
