package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graderight/grader/pkg/logging"
	"github.com/graderight/grader/pkg/models"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.FATAL, false)
}

func TestSendDeliversJSON(t *testing.T) {
	var gotContentType string
	var gotPayload models.GradingCallbackPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(0, testLogger())
	payload := models.GradingCallbackPayload{
		Action:       models.CallbackActionGrading,
		SubmissionID: "sub-1",
		Error:        "document fetch failed",
	}

	if ok := n.Send(context.Background(), srv.URL, payload); !ok {
		t.Fatal("Expected successful delivery")
	}

	if gotContentType != "application/json" {
		t.Errorf("Expected application/json, got %q", gotContentType)
	}
	if gotPayload.SubmissionID != "sub-1" || gotPayload.Action != models.CallbackActionGrading {
		t.Errorf("Unexpected payload: %+v", gotPayload)
	}
}

func TestSendNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(0, testLogger())
	if ok := n.Send(context.Background(), srv.URL, map[string]string{"k": "v"}); ok {
		t.Error("Expected failure for 500 response")
	}
}

func TestSendUnreachableReceiver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := New(0, testLogger())
	if ok := n.Send(context.Background(), srv.URL, map[string]string{"k": "v"}); ok {
		t.Error("Expected failure for unreachable receiver")
	}
}
