package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
)

// DuneBody is the JSON body of a sample book used across handler tests.
var DuneBody = map[string]any{
	"image":           "https://example.com/dune.jpg",
	"title":           "Dune",
	"author":          "Frank Herbert",
	"genre":           "SciFi",
	"publicationDate": "1965",
}

// TestCredentials is a sample register/login body.
var TestCredentials = map[string]any{
	"email":    "test@example.com",
	"password": "secret-password",
}

// NewRequest creates a new HTTP request for testing. A string body is sent
// verbatim; anything else is JSON encoded.
func NewRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	if bodyBytes == nil {
		return httptest.NewRequest(method, path, nil)
	}
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// WithURLParams attaches chi route parameters to r so handlers can be
// called without a router.
func WithURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
	Raw    string
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
		Raw:    string(bodyBytes),
	}
}

// Data returns the "data" member of an envelope.
func (r RecordResponse) Data() interface{} {
	return r.Body["data"]
}

// DataMap returns the "data" member of an envelope as an object.
func (r RecordResponse) DataMap() map[string]interface{} {
	m, _ := r.Body["data"].(map[string]interface{})
	return m
}

// DataList returns the "data" member of an envelope as an array of objects.
func (r RecordResponse) DataList() []map[string]interface{} {
	items, _ := r.Body["data"].([]interface{})
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}
