package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/posts-api/internal/config"
	"github.com/deppfellow/posts-api/internal/errs"
	"github.com/deppfellow/posts-api/internal/handler"
	"github.com/deppfellow/posts-api/internal/model"
	"github.com/deppfellow/posts-api/internal/router"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/deppfellow/posts-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "test-key"

// memoryStore is an in-memory posts table. forceAffected and err override
// the store's answers when set.
type memoryStore struct {
	mu            sync.Mutex
	nextID        int64
	rows          map[int64]model.Post
	calls         int
	forceAffected *int64
	err           error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 1, rows: make(map[int64]model.Post)}
}

func (m *memoryStore) List(context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	posts := make([]model.Post, 0, len(m.rows))
	for _, p := range m.rows {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (m *memoryStore) Create(_ context.Context, title, message string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	if m.forceAffected != nil {
		return *m.forceAffected, nil
	}

	m.rows[m.nextID] = model.Post{ID: m.nextID, Title: title, Message: message}
	m.nextID++
	return 1, nil
}

func (m *memoryStore) Update(_ context.Context, id int64, title, message string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	if m.forceAffected != nil {
		return *m.forceAffected, nil
	}

	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	m.rows[id] = model.Post{ID: id, Title: title, Message: message}
	return 1, nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	if m.forceAffected != nil {
		return *m.forceAffected, nil
	}

	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testApp struct {
	echo  *echo.Echo
	store *memoryStore
	logs  *bytes.Buffer
}

func newTestApp(t *testing.T, ping pingerFunc) *testApp {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := zerolog.New(zerolog.SyncWriter(logs))

	obs := config.DefaultObservabilityConfig()
	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Server:        config.ServerConfig{CORSAllowedOrigins: []string{"http://localhost:3000"}},
			Auth:          config.AuthConfig{APIKey: apiKey},
			Observability: obs,
		},
		Logger: &logger,
	}

	if ping == nil {
		ping = func(context.Context) error { return nil }
	}

	store := newMemoryStore()
	services := &service.Services{Post: service.NewPostService(store)}
	h := handler.NewHandlers(s, services, ping)

	return &testApp{echo: router.NewRouter(s, h), store: store, logs: logs}
}

func (a *testApp) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if key != "" {
		req.Header.Set(echo.HeaderAuthorization, key)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doForm(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(echo.HeaderAuthorization, apiKey)

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func TestEveryResourceRouteRequiresAPIKey(t *testing.T) {
	app := newTestApp(t, nil)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/getPosts", nil},
		{http.MethodPost, "/api/insertPost", map[string]any{"title": "A", "message": "B"}},
		{http.MethodPut, "/api/updatePost", map[string]any{"id": 1, "title": "A", "message": "B"}},
		{http.MethodDelete, "/api/deletePost", map[string]any{"id": 1}},
	}

	for _, route := range routes {
		for _, key := range []string{"", "wrong-key", strings.ToUpper(apiKey)} {
			rec := app.do(t, route.method, route.path, key, route.body)

			require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s key=%q", route.method, route.path, key)
			assert.Equal(t, "Unauthorized", messageOf(t, rec))
		}
	}

	assert.Zero(t, app.store.calls, "rejected requests must not reach the store")
	assert.Empty(t, app.store.rows)
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPost, "/api/insertPost", apiKey, map[string]any{"title": "A", "message": "B"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.MsgPostInserted, messageOf(t, rec))

	rec = app.do(t, http.MethodGet, "/api/getPosts", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Equal(t, []model.Post{{ID: 1, Title: "A", Message: "B"}}, posts)

	rec = app.do(t, http.MethodPut, "/api/updatePost", apiKey, map[string]any{"id": 1, "title": "C", "message": "D"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.MsgPostUpdated, messageOf(t, rec))
	assert.Equal(t, model.Post{ID: 1, Title: "C", Message: "D"}, app.store.rows[1])

	rec = app.do(t, http.MethodDelete, "/api/deletePost", apiKey, map[string]any{"id": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.MsgPostDeleted, messageOf(t, rec))

	rec = app.do(t, http.MethodGet, "/api/getPosts", apiKey, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.MsgNoPosts, messageOf(t, rec))
}

func TestListOrdersByID(t *testing.T) {
	app := newTestApp(t, nil)
	for _, title := range []string{"first", "second", "third"} {
		rec := app.do(t, http.MethodPost, "/api/insertPost", apiKey, map[string]any{"title": title, "message": "m"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := app.do(t, http.MethodGet, "/api/getPosts", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []model.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestMissingFieldsAreBadRequests(t *testing.T) {
	app := newTestApp(t, nil)

	cases := []struct {
		method  string
		path    string
		body    any
		message string
	}{
		{http.MethodPost, "/api/insertPost", map[string]any{"title": "A"}, service.MsgMissingCreate},
		{http.MethodPost, "/api/insertPost", map[string]any{"message": "B"}, service.MsgMissingCreate},
		{http.MethodPost, "/api/insertPost", map[string]any{"title": "", "message": "B"}, service.MsgMissingCreate},
		{http.MethodPut, "/api/updatePost", map[string]any{"title": "A", "message": "B"}, service.MsgMissingUpdate},
		{http.MethodPut, "/api/updatePost", map[string]any{"id": 0, "title": "A", "message": "B"}, service.MsgMissingUpdate},
		{http.MethodPut, "/api/updatePost", map[string]any{"id": 1, "message": "B"}, service.MsgMissingUpdate},
		{http.MethodPut, "/api/updatePost", map[string]any{"id": "one", "title": "A", "message": "B"}, service.MsgMissingUpdate},
		{http.MethodDelete, "/api/deletePost", map[string]any{}, service.MsgMissingDelete},
		{http.MethodDelete, "/api/deletePost", nil, service.MsgMissingDelete},
	}

	for _, tc := range cases {
		rec := app.do(t, tc.method, tc.path, apiKey, tc.body)

		require.Equal(t, http.StatusBadRequest, rec.Code, "%s %s %v", tc.method, tc.path, tc.body)
		assert.Equal(t, tc.message, messageOf(t, rec))
	}

	assert.Zero(t, app.store.calls)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/insertPost", strings.NewReader(`{"title":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, apiKey)
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgMissingCreate, messageOf(t, rec))
}

func TestFormBodies(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.doForm(t, http.MethodPost, "/api/insertPost", url.Values{"title": {"A"}, "message": {"B"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.doForm(t, http.MethodPut, "/api/updatePost", url.Values{"id": {"1"}, "title": {"C"}, "message": {"D"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "C", app.store.rows[1].Title)

	rec = app.doForm(t, http.MethodDelete, "/api/deletePost", url.Values{"id": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, app.store.rows)
}

func TestWriteOnMissingPostIsServerError(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPut, "/api/updatePost", apiKey, map[string]any{"id": 42, "title": "A", "message": "B"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.MsgUpdateFailed, messageOf(t, rec))

	rec = app.do(t, http.MethodDelete, "/api/deletePost", apiKey, map[string]any{"id": 42})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.MsgDeleteFailed, messageOf(t, rec))
}

func TestAffectedRowMismatchIsServerError(t *testing.T) {
	app := newTestApp(t, nil)
	zero := int64(0)
	app.store.forceAffected = &zero

	rec := app.do(t, http.MethodPost, "/api/insertPost", apiKey, map[string]any{"title": "A", "message": "B"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.MsgInsertFailed, messageOf(t, rec))
}

func TestStoreFailureHidesDetail(t *testing.T) {
	app := newTestApp(t, nil)
	app.store.err = errors.New("dial tcp 10.1.2.3:5432: connection refused")

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/getPosts", nil},
		{http.MethodPost, "/api/insertPost", map[string]any{"title": "A", "message": "B"}},
		{http.MethodPut, "/api/updatePost", map[string]any{"id": 1, "title": "A", "message": "B"}},
		{http.MethodDelete, "/api/deletePost", map[string]any{"id": 1}},
	} {
		rec := app.do(t, tc.method, tc.path, apiKey, tc.body)

		require.Equal(t, http.StatusInternalServerError, rec.Code, tc.path)
		assert.Equal(t, "Internal Server Error", messageOf(t, rec))
		assert.NotContains(t, rec.Body.String(), "10.1.2.3")
	}

	assert.Contains(t, app.logs.String(), "connection refused")
}

func TestUnknownRoutesAreNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/nothing"},
		{http.MethodGet, "/"},
		{http.MethodPost, "/api/getPosts"},
		{http.MethodGet, "/api/deletePost"},
		{http.MethodPatch, "/api/updatePost"},
	} {
		rec := app.do(t, tc.method, tc.path, apiKey, nil)

		require.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		var body errs.HTTPError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Route not found", body.Message)
		assert.Equal(t, "NOT_FOUND", body.Code)
	}
}

func TestStatusReportsDatabaseHealth(t *testing.T) {
	app := newTestApp(t, nil)
	rec := app.do(t, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	app = newTestApp(t, func(context.Context) error { return errors.New("pool closed") })
	rec = app.do(t, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.NotContains(t, rec.Body.String(), "pool closed")
}

func TestDocsAreServed(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodGet, "/docs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	rec = app.do(t, http.MethodGet, "/static/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Paths, 4)
}

func TestRequestsAreIndependent(t *testing.T) {
	app := newTestApp(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := app.do(t, http.MethodPost, "/api/insertPost", apiKey, map[string]any{"title": "t", "message": "m"})
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	assert.Len(t, app.store.rows, 20)
	assert.Equal(t, 20, strings.Count(app.logs.String(), `"message":"API"`))
}
