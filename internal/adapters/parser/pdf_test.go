package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPDFParser_Parse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/parse" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":  "Termination in 30 days",
			"pages": 1,
		})
	}))
	defer server.Close()

	p := NewPDFParser(server.URL)
	text, err := p.Parse(context.Background(), []byte("%PDF-1.4"), "report.pdf")

	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if text != "Termination in 30 days" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestPDFParser_MalformedPDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "not a pdf"})
	}))
	defer server.Close()

	p := NewPDFParser(server.URL)
	_, err := p.Parse(context.Background(), []byte("garbage"), "bad.pdf")

	if err == nil {
		t.Error("should error on malformed PDF")
	}
}

func TestPDFParser_ServiceDown(t *testing.T) {
	p := NewPDFParser("http://127.0.0.1:1")
	_, err := p.Parse(context.Background(), []byte("%PDF-"), "x.pdf")

	if err == nil {
		t.Error("should error when the service is unreachable")
	}
}

func TestPDFParser_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewPDFParser(server.URL)
	if !p.IsServiceHealthy(context.Background()) {
		t.Error("expected healthy service")
	}

	down := NewPDFParser("http://127.0.0.1:1")
	if down.IsServiceHealthy(context.Background()) {
		t.Error("expected unhealthy service")
	}
}
