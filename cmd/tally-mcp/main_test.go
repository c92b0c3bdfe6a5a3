package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProxyForwardsMessages(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`))
	}))
	defer backend.Close()

	proxy := &StdioProxy{serverURL: backend.URL}

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	if err := proxy.RunWithIO(in, &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), `"result":{"ok":true}`) {
		t.Errorf("Expected forwarded result, got %s", out.String())
	}
}

func TestProxySkipsBlankLines(t *testing.T) {
	calls := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer backend.Close()

	proxy := &StdioProxy{serverURL: backend.URL}

	in := strings.NewReader("\n\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n")
	var out bytes.Buffer

	if err := proxy.RunWithIO(in, &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 backend call, got %d", calls)
	}
}

func TestProxyWritesJSONRPCErrorOnBackendFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	proxy := &StdioProxy{serverURL: backend.URL}

	in := strings.NewReader(`{"jsonrpc":"2.0","id":42,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	if err := proxy.RunWithIO(in, &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var resp struct {
		ID    json.RawMessage `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if string(resp.ID) != "42" {
		t.Errorf("Expected id 42, got %s", resp.ID)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Expected code -32000, got %d", resp.Error.Code)
	}
}
