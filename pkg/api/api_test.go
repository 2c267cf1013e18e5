package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/annomi/pkg/dataset"
	"github.com/hazyhaar/annomi/pkg/subst"
)

func testService(t *testing.T) *Service {
	t.Helper()
	m, err := subst.New(subst.Pair{Old: "don't", New: "do not"})
	if err != nil {
		t.Fatal(err)
	}
	d, err := dataset.New(
		[]string{"id", "topic", "utterance_text", "client_talk_type"},
		[][]string{
			{"1", "X", "a", "change"},
			{"2", "X", "b", "change"},
			{"3", "X|Y", "c", "change"},
			{"4", "Y", "d", "change"},
			{"5", "X", "e", "change"},
			{"6", "Y", "f", "change"},
		},
		dataset.WithSubstitutions(m),
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	s, err := NewService(d)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())
	rec := do(t, h, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[healthResponse](t, rec)
	if diff := cmp.Diff(healthResponse{Status: "ok", Rows: 6}, got); diff != "" {
		t.Errorf("health (-want +got):\n%s", diff)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestTopics(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())

	got := decode[topicsResponse](t, do(t, h, http.MethodGet, "/v1/topics", ""))
	if got.Total != 3 || got.Topics[0].Topic != "X" || got.Topics[0].Count != 3 {
		t.Errorf("topics = %+v", got)
	}

	got = decode[topicsResponse](t, do(t, h, http.MethodGet, "/v1/topics?limit=1", ""))
	if got.Total != 3 || len(got.Topics) != 1 {
		t.Errorf("limited topics = %+v", got)
	}

	if rec := do(t, h, http.MethodGet, "/v1/topics?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestNormalize(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())

	rec := do(t, h, http.MethodPost, "/v1/normalize",
		`{"texts":["I  DON'T know","Um [unintelligible 00:01:02] self-care"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[normalizeResponse](t, rec)
	if diff := cmp.Diff([]string{"i don't know", "self care"}, got.Texts); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}

	tests := []struct {
		name, body string
	}{
		{"empty", `{"texts":[]}`},
		{"invalid json", `{`},
		{"too many", `{"texts":[` + strings.TrimSuffix(strings.Repeat(`"a",`, MaxNormalizeTexts+1), ",") + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/v1/normalize", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())

	rec := do(t, h, http.MethodPost, "/v1/split", `{"target":"client_talk_type","seed":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[splitResponse](t, rec)
	if got.Train != 4 || got.Test != 2 {
		t.Errorf("train=%d test=%d, want 4/2", got.Train, got.Test)
	}
	if diff := cmp.Diff([]string{"change"}, got.Classes); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}
	if len(got.Groups) != 3 || !got.Groups[1].Covered {
		t.Errorf("groups = %+v", got.Groups)
	}

	bad := []string{
		`{"target":""}`,
		`{"target":"missing"}`,
		`{"target":"topic"}`,
		`{"target":"client_talk_type","test_size":1.5}`,
		`{"target":"client_talk_type","multi_topic_fallback":false}`,
	}
	for _, body := range bad {
		if rec := do(t, h, http.MethodPost, "/v1/split", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewRouter(testService(t), quietLogger())
	if rec := do(t, h, http.MethodGet, "/v1/split", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if rec := do(t, h, http.MethodOptions, "/v1/split", ""); rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) (string, bool) {
	t.Helper()
	msg, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	raw, err := json.Marshal(srv.HandleMessage(context.Background(), msg))
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	var res struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &res); err != nil || len(res.Result.Content) == 0 {
		t.Fatalf("response %s: %v", raw, err)
	}
	return res.Result.Content[0].Text, res.Result.IsError
}

func TestMCPTools(t *testing.T) {
	srv := server.NewMCPServer("annomi", "test")
	RegisterMCPTools(srv, testService(t), quietLogger())

	text, isErr := callTool(t, srv, "normalize_text", map[string]any{"text": "I DON'T\nself-care"})
	if isErr {
		t.Fatalf("normalize_text error: %s", text)
	}
	var norm normalizeResponse
	json.Unmarshal([]byte(text), &norm)
	if diff := cmp.Diff([]string{"i don't", "self care"}, norm.Texts); diff != "" {
		t.Errorf("normalize_text (-want +got):\n%s", diff)
	}

	text, _ = callTool(t, srv, "topic_distribution", map[string]any{"limit": 2})
	var topics topicsResponse
	json.Unmarshal([]byte(text), &topics)
	if topics.Total != 3 || len(topics.Topics) != 2 {
		t.Errorf("topic_distribution = %s", text)
	}

	text, isErr = callTool(t, srv, "split_summary", map[string]any{"target": "client_talk_type", "seed": 3, "test_size": 0.5})
	if isErr {
		t.Fatalf("split_summary error: %s", text)
	}
	var sp splitResponse
	json.Unmarshal([]byte(text), &sp)
	if sp.Train+sp.Test != 6 {
		t.Errorf("split_summary = %s", text)
	}

	if _, isErr := callTool(t, srv, "split_summary", map[string]any{"target": "nope"}); !isErr {
		t.Error("expected tool error for unknown target")
	}
}
