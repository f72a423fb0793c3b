package amqp

import (
	"strings"
	"testing"
)

func TestExpenseEventRoundTrip(t *testing.T) {
	event := NewExpenseEvent(EventExpenseCreated, "u1", "e1")

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	got, err := ExpenseEventFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseEventFromJSON() error: %v", err)
	}
	if got.Kind != EventExpenseCreated || got.UserID != "u1" || got.ExpenseID != "e1" {
		t.Errorf("round trip = %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp lost in round trip")
	}
}

func TestExpenseEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   ExpenseEvent
		wantErr string
	}{
		{name: "created", event: ExpenseEvent{Kind: EventExpenseCreated, UserID: "u", ExpenseID: "e"}},
		{name: "deleted", event: ExpenseEvent{Kind: EventExpenseDeleted, UserID: "u", ExpenseID: "e"}},
		{name: "unknown kind", event: ExpenseEvent{Kind: "expense.renamed", UserID: "u", ExpenseID: "e"}, wantErr: "unknown event kind"},
		{name: "missing user", event: ExpenseEvent{Kind: EventExpenseCreated, ExpenseID: "e"}, wantErr: "missing ids"},
		{name: "missing expense", event: ExpenseEvent{Kind: EventExpenseDeleted, UserID: "u"}, wantErr: "missing ids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ExpenseEventFromJSON([]byte("{")); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := ExpenseEventFromJSON([]byte(`{"kind":"expense.created"}`)); err == nil {
		t.Error("event without ids accepted")
	}
}
