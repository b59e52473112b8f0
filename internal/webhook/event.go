package webhook

import (
	"encoding/json"
	"fmt"
)

// EventType identifies a lifecycle event.
type EventType string

// Handled user lifecycle events.
const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// Event is the delivery envelope. Data is decoded per type.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EmailAddress is one entry of a user's email list.
type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// UserData is the payload of user.created and user.updated events.
type UserData struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	ImageURL       string         `json:"image_url"`
	Username       *string        `json:"username"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
}

// PrimaryEmail returns the first listed email address.
func (d UserData) PrimaryEmail() (string, bool) {
	if len(d.EmailAddresses) == 0 {
		return "", false
	}
	return d.EmailAddresses[0].EmailAddress, true
}

// DeletedData is the payload of user.deleted events.
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ParseEvent decodes the delivery envelope.
func ParseEvent(payload []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if evt.Type == "" {
		return nil, fmt.Errorf("decode event envelope: missing type")
	}
	return &evt, nil
}

// UserData decodes the event data as a user payload.
func (e *Event) UserData() (*UserData, error) {
	var data UserData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", e.Type, err)
	}
	return &data, nil
}

// DeletedData decodes the event data as a deletion payload.
func (e *Event) DeletedData() (*DeletedData, error) {
	var data DeletedData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("decode %s data: %w", e.Type, err)
	}
	return &data, nil
}

// StringValue returns *p or "" when p is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
