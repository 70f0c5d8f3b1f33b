package tests

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/api"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// seenRequest - что пришло на тестовый сервер.
type seenRequest struct {
	Method        string
	ContentType   string
	Accept        string
	Authorization string
	Body          string
}

// recordServer отвечает status/body на любой путь и запоминает последний запрос.
func recordServer(t *testing.T, status int, body string) (*httptest.Server, *seenRequest) {
	t.Helper()

	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*seen = seenRequest{
			Method:        r.Method,
			ContentType:   r.Header.Get("Content-Type"),
			Accept:        r.Header.Get("Accept"),
			Authorization: r.Header.Get("Authorization"),
			Body:          string(raw),
		}
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestClient_JSONVerbs_HeadersAndBody(t *testing.T) {
	type call func(c *api.Client, resp any) error

	cases := []struct {
		name     string
		method   string
		call     call
		wantCT   string
		wantAuth string
		wantBody string
	}{
		{
			name:   "post with body and token",
			method: http.MethodPost,
			call: func(c *api.Client, resp any) error {
				return c.PostJSON("/x", map[string]any{"a": 1}, resp, "token-1")
			},
			wantCT:   "application/json",
			wantAuth: "Bearer token-1",
			wantBody: `{"a":1}`,
		},
		{
			name:   "post without body and token",
			method: http.MethodPost,
			call: func(c *api.Client, resp any) error {
				return c.PostJSON("/x", nil, resp, "")
			},
		},
		{
			name:   "get",
			method: http.MethodGet,
			call: func(c *api.Client, resp any) error {
				return c.GetJSON("/x", resp, "token-1")
			},
			wantAuth: "Bearer token-1",
		},
		{
			name:   "put",
			method: http.MethodPut,
			call: func(c *api.Client, resp any) error {
				return c.PutJSON("/x", map[string]any{"title": "t"}, resp, "token-1")
			},
			wantCT:   "application/json",
			wantAuth: "Bearer token-1",
			wantBody: `{"title":"t"}`,
		},
		{
			name:   "put without body",
			method: http.MethodPut,
			call: func(c *api.Client, resp any) error {
				return c.PutJSON("/x", nil, resp, "")
			},
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			call: func(c *api.Client, resp any) error {
				return c.DeleteJSON("/x", resp, "token-1")
			},
			wantAuth: "Bearer token-1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, seen := recordServer(t, http.StatusOK, `{"ok":true}`)

			var resp map[string]any
			if err := tc.call(api.NewClient(srv.URL), &resp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp["ok"] != true {
				t.Fatalf("expected ok=true, got %#v", resp)
			}
			if seen.Method != tc.method {
				t.Fatalf("expected %s, got %s", tc.method, seen.Method)
			}
			if seen.Accept != "application/json" {
				t.Fatalf("expected Accept application/json, got %q", seen.Accept)
			}
			if seen.ContentType != tc.wantCT {
				t.Fatalf("expected Content-Type %q, got %q", tc.wantCT, seen.ContentType)
			}
			if seen.Authorization != tc.wantAuth {
				t.Fatalf("expected Authorization %q, got %q", tc.wantAuth, seen.Authorization)
			}
			if strings.TrimSpace(seen.Body) != tc.wantBody {
				t.Fatalf("expected body %q, got %q", tc.wantBody, seen.Body)
			}
		})
	}
}

func TestClient_EmptyResponses_AreNotErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		resp   any
	}{
		{"204 no content", http.StatusNoContent, "", &map[string]any{}},
		{"200 empty body", http.StatusOK, "", &map[string]any{}},
		{"resp nil ignores non-json", http.StatusOK, "not a json", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := recordServer(t, tc.status, tc.body)
			if err := api.NewClient(srv.URL).GetJSON("/x", tc.resp, ""); err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}

func TestClient_Non2xx_PlainTextBecomesMessage(t *testing.T) {
	// тело не JSON: сообщение берётся как есть
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "unauthorized\n")
	}))
	defer srv.Close()

	err := api.NewClient(srv.URL).GetJSON("/x", nil, "token-1")
	if err == nil || err.Error() != "unauthorized" {
		t.Fatalf("expected plain text error, got %v", err)
	}
	if !errors.Is(err, serr.ErrUnauthorized) {
		t.Fatalf("expected errors.Is ErrUnauthorized")
	}
}

func TestClient_Non2xx_EmptyBodyUsesStatus(t *testing.T) {
	srv, _ := recordServer(t, http.StatusInternalServerError, "")

	err := api.NewClient(srv.URL).GetJSON("/x", nil, "")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestClient_JSONError_ParsedIntoAPIError(t *testing.T) {
	srv, _ := recordServer(t, http.StatusBadRequest,
		`{"message":"Validation failed","errors":{"title":"Title is required","email":"Invalid email"}}`)

	err := api.NewClient(srv.URL).PostJSON("/x", map[string]any{}, nil, "")

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Validation failed" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if apiErr.Fields["title"] != "Title is required" {
		t.Fatalf("unexpected fields: %#v", apiErr.Fields)
	}
	// поля печатаются в алфавитном порядке
	want := "Validation failed (email: Invalid email; title: Title is required)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, serr.ErrInvalidInput) {
		t.Fatalf("expected errors.Is ErrInvalidInput")
	}
}

func TestClient_UnencodableRequest_ReturnsError(t *testing.T) {
	srv, seen := recordServer(t, http.StatusOK, `{}`)

	// json не кодирует func
	err := api.NewClient(srv.URL).PostJSON("/x", func() {}, nil, "")
	if err == nil || !strings.Contains(err.Error(), "encode request") {
		t.Fatalf("expected encode error, got %v", err)
	}
	if seen.Method != "" {
		t.Fatalf("request must not be sent, got %s", seen.Method)
	}
}

func TestClient_DecodeIntoStruct(t *testing.T) {
	srv, _ := recordServer(t, http.StatusOK, `{"id":3,"name":"Painting"}`)

	var resp struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := api.NewClient(srv.URL).GetJSON("/categories/3", &resp, ""); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if resp.ID != 3 || resp.Name != "Painting" {
		t.Fatalf("unexpected resp: %+v", resp)
	}
}

func TestAPIError_IsMapsStatus(t *testing.T) {
	cases := []struct {
		status int
		target error
	}{
		{http.StatusUnauthorized, serr.ErrUnauthorized},
		{http.StatusNotFound, serr.ErrNotFound},
		{http.StatusConflict, serr.ErrAlreadyExists},
		{http.StatusBadRequest, serr.ErrInvalidInput},
	}
	for _, tc := range cases {
		err := &api.APIError{Status: tc.status}
		if !errors.Is(err, tc.target) {
			t.Fatalf("status %d: expected errors.Is(%v)", tc.status, tc.target)
		}
	}

	if errors.Is(&api.APIError{Status: http.StatusInternalServerError}, serr.ErrNotFound) {
		t.Fatalf("500 must not match ErrNotFound")
	}
	if got := (&api.APIError{Status: http.StatusTeapot}).Error(); got != http.StatusText(http.StatusTeapot) {
		t.Fatalf("expected status text for empty message, got %q", got)
	}
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	if got := api.NewClient("http://example.com///").BaseURL(); got != "http://example.com" {
		t.Fatalf("unexpected base url: %q", got)
	}
	if got := api.NewClient("  ").BaseURL(); got != api.DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", got)
	}
}
