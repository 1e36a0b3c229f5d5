package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/graderight/grader/pkg/logging"
)

func testLogger() *logging.Logger {
	l := logging.NewLogger(logging.ERROR, false)
	return l
}

func TestFetchDownloadsToTempPDF(t *testing.T) {
	body := []byte("%PDF-1.4 fake content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f := New(0, testLogger())
	path, err := f.Fetch(context.Background(), srv.URL+"/solution.pdf")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer os.Remove(path)

	if !strings.HasSuffix(path, ".pdf") {
		t.Errorf("Expected .pdf suffix, got %s", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read downloaded file: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Downloaded content mismatch")
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(0, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf")
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := New(0, testLogger())
	_, err := f.Fetch(context.Background(), srv.URL+"/solution.pdf")
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Expected ErrFetchFailed, got %v", err)
	}
}
