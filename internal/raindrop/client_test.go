package raindrop

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

// testClient wires a Client to a test server and records the backoff delays
// the retry loop asks for, without actually sleeping.
func testClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		Token:          "test-token",
		BaseURL:        srv.URL,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	delays := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func apiErrorFrom(t *testing.T, err error) *APIError {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	return apiErr
}

func TestRetryableFailuresEventuallySucceed(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		failures int
	}{
		{name: "one 500 then success", status: 500, failures: 1},
		{name: "two 503 then success", status: 503, failures: 2},
		{name: "three 429 then success", status: 429, failures: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				if attempts <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(`{"item":{"_id":42,"link":"https://example.com"}}`))
			}))

			b, err := c.GetBookmark(context.Background(), 42)
			if err != nil {
				t.Fatalf("GetBookmark() error: %v", err)
			}
			if b.ID != 42 || b.Link != "https://example.com" {
				t.Errorf("GetBookmark() = %+v, want id 42 link https://example.com", b)
			}
			if attempts != tt.failures+1 {
				t.Errorf("attempts = %d, want %d", attempts, tt.failures+1)
			}
			// Delays double starting from the base: 1s, 2s, 4s.
			if len(*delays) != tt.failures {
				t.Fatalf("delays = %v, want %d entries", *delays, tt.failures)
			}
			for i, d := range *delays {
				want := time.Second << i
				if d != want {
					t.Errorf("delay[%d] = %v, want %v", i, d, want)
				}
			}
		})
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	attempts := 0
	c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.GetBookmark(context.Background(), 1)
	apiErr := apiErrorFrom(t, err)

	if apiErr.Kind != KindServerError {
		t.Errorf("Kind = %s, want %s", apiErr.Kind, KindServerError)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (1 initial + 3 retries)", attempts)
	}
	if len(*delays) != 3 {
		t.Errorf("delays = %v, want exactly 3", *delays)
	}
}

func TestTerminalStatusesAreNotRetried(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{status: 400, kind: KindBadRequest},
		{status: 401, kind: KindUnauthorized},
		{status: 403, kind: KindForbidden},
		{status: 404, kind: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			attempts := 0
			c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))

			_, err := c.GetBookmark(context.Background(), 1)
			apiErr := apiErrorFrom(t, err)

			if apiErr.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", apiErr.Kind, tt.kind)
			}
			if apiErr.Retryable() {
				t.Error("terminal error reported as retryable")
			}
			if attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
			if len(*delays) != 0 {
				t.Errorf("delays = %v, want none", *delays)
			}
		})
	}
}

func TestConnectivityFailureRetriedThenClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	c, err := New(Options{Token: "t", BaseURL: srv.URL, MaxRetries: 3})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	attempts := 0
	c.sleep = func(_ context.Context, _ time.Duration) error {
		attempts++
		return nil
	}

	_, err = c.GetBookmark(context.Background(), 1)
	apiErr := apiErrorFrom(t, err)

	if apiErr.Kind != KindConnectivity {
		t.Errorf("Kind = %s, want %s", apiErr.Kind, KindConnectivity)
	}
	if attempts != 3 {
		t.Errorf("backoff sleeps = %d, want 3", attempts)
	}
}

func TestRequestCarriesAuthHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"item":{}}`))
	}))

	if _, err := c.GetBookmark(context.Background(), 1); err != nil {
		t.Fatalf("GetBookmark() error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func capturePayload(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("reading request body: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	return m
}

func TestCreateBookmarkPayload(t *testing.T) {
	tests := []struct {
		name           string
		params         CreateBookmarkParams
		wantCollection interface{} // nil = key must be absent
	}{
		{
			name:           "collection zero omitted",
			params:         CreateBookmarkParams{Link: "https://example.com", Collection: 0},
			wantCollection: nil,
		},
		{
			name:           "explicit collection nested ref",
			params:         CreateBookmarkParams{Link: "https://example.com", Collection: 5},
			wantCollection: map[string]interface{}{"$id": float64(5)},
		},
		{
			name:           "trash collection forwarded",
			params:         CreateBookmarkParams{Link: "https://example.com", Collection: -1},
			wantCollection: map[string]interface{}{"$id": float64(-1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload map[string]interface{}
			c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				payload = capturePayload(t, r)
				_, _ = w.Write([]byte(`{"item":{"_id":1}}`))
			}))

			if _, err := c.CreateBookmark(context.Background(), tt.params); err != nil {
				t.Fatalf("CreateBookmark() error: %v", err)
			}

			if payload["link"] != "https://example.com" {
				t.Errorf("link = %v", payload["link"])
			}
			if _, ok := payload["pleaseParse"]; !ok {
				t.Error("pleaseParse missing: the server must auto-parse metadata")
			}
			got, present := payload["collection"]
			if tt.wantCollection == nil {
				if present {
					t.Errorf("collection = %v, want absent", got)
				}
				return
			}
			gotRef, _ := got.(map[string]interface{})
			wantRef := tt.wantCollection.(map[string]interface{})
			if gotRef["$id"] != wantRef["$id"] {
				t.Errorf("collection = %v, want %v", got, tt.wantCollection)
			}
		})
	}
}

func TestCreateBookmarkRequiresLink(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))

	_, err := c.CreateBookmark(context.Background(), CreateBookmarkParams{})
	apiErr := apiErrorFrom(t, err)
	if apiErr.Kind != KindBadRequest {
		t.Errorf("Kind = %s, want %s", apiErr.Kind, KindBadRequest)
	}
}

func TestUpdateBookmarkPartialPayload(t *testing.T) {
	var payload map[string]interface{}
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload = capturePayload(t, r)
		_, _ = w.Write([]byte(`{"item":{"_id":7}}`))
	}))

	// Explicit zero values must survive; absent fields must stay absent.
	_, err := c.UpdateBookmark(context.Background(), 7, UpdateBookmarkParams{
		Title:      ptr("new title"),
		Important:  ptr(false),
		Collection: ptr(int64(0)),
	})
	if err != nil {
		t.Fatalf("UpdateBookmark() error: %v", err)
	}

	if payload["title"] != "new title" {
		t.Errorf("title = %v", payload["title"])
	}
	if v, ok := payload["important"]; !ok || v != false {
		t.Errorf("important = %v (present=%v), want explicit false", v, ok)
	}
	ref, ok := payload["collection"].(map[string]interface{})
	if !ok || ref["$id"] != float64(0) {
		t.Errorf("collection = %v, want {$id: 0} forwarded on update", payload["collection"])
	}
	for _, absent := range []string{"link", "excerpt", "note", "tags"} {
		if _, ok := payload[absent]; ok {
			t.Errorf("%s present in payload, want omitted", absent)
		}
	}
}

func TestSearchBookmarksRequestShape(t *testing.T) {
	tests := []struct {
		name      string
		filter    SearchFilter
		wantPath  string
		wantQuery map[string]string
		absent    []string
	}{
		{
			name:     "defaults target all collections with no params",
			filter:   SearchFilter{},
			wantPath: "/raindrops/0",
			absent:   []string{"search", "tags", "sort", "page", "perpage"},
		},
		{
			name:     "unsorted scope",
			filter:   SearchFilter{Collection: CollectionTrash},
			wantPath: "/raindrops/-1",
		},
		{
			name: "full filter",
			filter: SearchFilter{
				Query:      "golang",
				Collection: 12,
				Tags:       []string{"dev", "go"},
				Sort:       SortTitleAsc,
				Page:       2,
				PerPage:    25,
			},
			wantPath: "/raindrops/12",
			wantQuery: map[string]string{
				"search":  "golang",
				"tags":    "dev,go",
				"sort":    "title",
				"page":    "2",
				"perpage": "25",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string
			c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				_, _ = w.Write([]byte(`{"items":[{"_id":1,"link":"https://a"}],"count":1}`))
			}))

			res, err := c.SearchBookmarks(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("SearchBookmarks() error: %v", err)
			}
			if res.TotalCount != 1 || len(res.Items) != 1 {
				t.Errorf("result = %+v, want 1 item, count 1", res)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %s, want %s", gotPath, tt.wantPath)
			}
			for k, want := range tt.wantQuery {
				if got := gotQuery[k]; len(got) != 1 || got[0] != want {
					t.Errorf("query[%s] = %v, want %s", k, got, want)
				}
			}
			for _, k := range tt.absent {
				if _, ok := gotQuery[k]; ok {
					t.Errorf("query[%s] present, want omitted", k)
				}
			}
		})
	}
}

func TestTagOperations(t *testing.T) {
	var gotMethod, gotPath string
	var payload map[string]interface{}
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		payload = capturePayload(t, r)
		_, _ = w.Write([]byte(`{"result":true}`))
	}))

	if err := c.RenameTag(context.Background(), "old", "new"); err != nil {
		t.Fatalf("RenameTag() error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/tag" {
		t.Errorf("rename = %s %s, want PUT /tag", gotMethod, gotPath)
	}
	if payload["replace"] != "new" {
		t.Errorf("replace = %v, want new", payload["replace"])
	}

	if err := c.DeleteTag(context.Background(), "stale"); err != nil {
		t.Fatalf("DeleteTag() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/tag" {
		t.Errorf("delete = %s %s, want DELETE /tag", gotMethod, gotPath)
	}
	tags, _ := payload["tags"].([]interface{})
	if len(tags) != 1 || tags[0] != "stale" {
		t.Errorf("tags = %v, want [stale]", payload["tags"])
	}
}

func TestListTagsDecodesAggregates(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"_id":"go","count":12},{"_id":"news","count":3}]}`))
	}))

	tags, err := c.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "go" || tags[0].Count != 12 {
		t.Errorf("ListTags() = %+v", tags)
	}
}

func TestGetCurrentUserUnwrapsEnvelope(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":true,"user":{"_id":99,"email":"me@example.com"}}`))
	}))

	user, err := c.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUser() error: %v", err)
	}
	if user["email"] != "me@example.com" {
		t.Errorf("user = %v", user)
	}
}

func TestBookmarkJSONRoundTrip(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"item":{"_id":5,"link":"https://x","title":"T","excerpt":"E",` +
			`"note":"N","tags":["a","b"],"collection":{"$id":3},"important":true,` +
			`"created":"2024-01-02T03:04:05.000Z","lastUpdate":"2024-02-03T04:05:06.000Z"}}`))
	}))

	b, err := c.GetBookmark(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetBookmark() error: %v", err)
	}

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Bookmark
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.ID != 5 || back.Link != "https://x" || back.Title != "T" ||
		back.Excerpt != "E" || back.Note != "N" || len(back.Tags) != 2 ||
		back.Collection == nil || back.Collection.ID != 3 || !back.Important ||
		back.Created != "2024-01-02T03:04:05.000Z" || back.LastUpdate != "2024-02-03T04:05:06.000Z" {
		t.Errorf("round trip lost fields: %+v", back)
	}
}
