package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderWritesTriggersAndBody(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerExpenseChanged().
		TriggerFormReset().
		SuccessFragment("saved").
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var triggers map[string]any
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{"expenses:changed", "form:reset"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q", name)
		}
	}

	if !strings.Contains(rec.Body.String(), `class="success"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError(`<img onerror="x">`).Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<img") {
		t.Error("message was not escaped")
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != "POST" {
		t.Errorf("Allow = %q, want POST", rec.Header().Get("Allow"))
	}
}

func TestNotificationPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerErrorNotification("boom").Write(rec)

	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	n, ok := triggers["show-notification"]
	if !ok {
		t.Fatal("missing show-notification trigger")
	}
	if n["type"] != "error" || n["message"] != "boom" {
		t.Errorf("payload = %v", n)
	}
}
