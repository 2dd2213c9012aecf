package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyPayload = errors.New("request body must be a JSON object")
)

// GuestUserID is the sentinel identity assigned to requests whose bearer
// token is absent, empty, or unknown.
const GuestUserID = "guest"

// DefaultCategories seeds the categories document when none exists yet.
var DefaultCategories = []string{"Development", "Documentation", "Meetings", "Operations"}

// Identity is the result of resolving a bearer token: the owning user and
// every group whose membership list contains that user, in table order.
type Identity struct {
	UserID string   `json:"userid"`
	Groups []string `json:"groups"`
}

// Task represents one tracked unit of work. task_id and created_at are
// assigned once at creation and never change afterwards; updated_at is
// non-decreasing across updates.
type Task struct {
	TaskID        string   `json:"task_id" bson:"task_id"`
	UserID        string   `json:"userid" bson:"userid"`
	Date          string   `json:"date,omitempty" bson:"date,omitempty"`
	TaskName      string   `json:"task_name" bson:"task_name"`
	Category      string   `json:"category" bson:"category"`
	ExpectedHours float64  `json:"expected_hours" bson:"expected_hours"`
	ActualHours   *float64 `json:"actual_hours,omitempty" bson:"actual_hours,omitempty"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	ProjectCode   string   `json:"project_code,omitempty" bson:"project_code,omitempty"`
	Notes         string   `json:"notes,omitempty" bson:"notes,omitempty"`

	// Extra carries client fields outside the schema when the compatibility
	// policy allows them. They live at the top level of the stored document.
	Extra map[string]string `json:"-" bson:",inline"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// MarshalJSON merges Extra fields into the serialized document so that
// pass-through fields survive a round trip to the client.
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	data, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return data, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range t.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors aggregates every field rejection for one request. A
// request that fails validation is never partially applied.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the rejections keyed by field name for response bodies.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, ve := range e {
		out[ve.Field] = ve.Reason
	}
	return out
}
