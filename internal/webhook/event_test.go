package webhook

import "testing"

func TestParseEvent_UserCreated(t *testing.T) {
	payload := []byte(`{
		"type": "user.created",
		"data": {
			"id": "user_29w83sxmDNGwOuEthce5gg56FcC",
			"email_addresses": [{"email_address": "ada@example.com"}, {"email_address": "alt@example.com"}],
			"image_url": "https://img.clerk.com/ada.png",
			"username": null,
			"first_name": "Ada"
		}
	}`)

	evt, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if evt.Type != EventUserCreated {
		t.Errorf("Type = %q, want %q", evt.Type, EventUserCreated)
	}

	data, err := evt.UserData()
	if err != nil {
		t.Fatalf("UserData failed: %v", err)
	}

	email, ok := data.PrimaryEmail()
	if !ok || email != "ada@example.com" {
		t.Errorf("PrimaryEmail() = %q, %v", email, ok)
	}
	if StringValue(data.Username) != "" {
		t.Errorf("null username should decode to empty, got %q", StringValue(data.Username))
	}
	if StringValue(data.FirstName) != "Ada" {
		t.Errorf("FirstName = %q", StringValue(data.FirstName))
	}
	if data.LastName != nil {
		t.Errorf("absent last_name should stay nil")
	}
}

func TestParseEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `not-json`},
		{"missing type", `{"data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEvent([]byte(tt.payload)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUserData_NoEmail(t *testing.T) {
	var d UserData
	if _, ok := d.PrimaryEmail(); ok {
		t.Error("PrimaryEmail() should report false for empty list")
	}
}

func TestDeletedData(t *testing.T) {
	evt, err := ParseEvent([]byte(`{"type":"user.deleted","data":{"id":"user_1","deleted":true}}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	data, err := evt.DeletedData()
	if err != nil {
		t.Fatalf("DeletedData failed: %v", err)
	}
	if data.ID != "user_1" || !data.Deleted {
		t.Errorf("DeletedData() = %+v", data)
	}
}
