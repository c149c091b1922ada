package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bizdata-console/internal/application/board"
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
	"github.com/bryanwahyu/bizdata-console/internal/infra/bizapi"
	"github.com/bryanwahyu/bizdata-console/internal/infra/httpserver"
)

// backend is a small in-memory business API.
type backend struct {
	mu      sync.Mutex
	records []business.Business
	nextID  business.ID
	fail    bool
	// nullList makes the list endpoint answer with a JSON null
	nullList bool
	methods  []string
}

func (b *backend) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.methods = append(b.methods, req.Method)
			fail := b.fail
			b.mu.Unlock()
			if fail {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/businesses", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.nullList {
			w.Write([]byte("null"))
			return
		}
		json.NewEncoder(w).Encode(b.records)
	})
	r.Post("/api/businesses", func(w http.ResponseWriter, req *http.Request) {
		var p business.Payload
		json.NewDecoder(req.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		b.records = append(b.records, business.Business{ID: b.nextID, Name: p.Name, Story: p.Story, Tags: "#new#" + strings.ToLower(p.Name)})
		w.WriteHeader(http.StatusCreated)
	})
	r.Put("/api/businesses/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		var p business.Payload
		json.NewDecoder(req.Body).Decode(&p)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.records {
			if b.records[i].ID == business.ID(id) {
				b.records[i].Name, b.records[i].Story = p.Name, p.Story
			}
		}
	})
	r.Delete("/api/businesses/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		kept := b.records[:0]
		for _, rec := range b.records {
			if rec.ID != business.ID(id) {
				kept = append(kept, rec)
			}
		}
		b.records = kept
	})
	return r
}

func (b *backend) setFail(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = v
}

func (b *backend) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.methods {
		if m == method {
			n++
		}
	}
	return n
}

type console struct {
	api     *backend
	svc     *board.Service
	handler http.Handler
}

func newConsole(t *testing.T, seed ...business.Business) *console {
	t.Helper()
	api := &backend{records: append([]business.Business{}, seed...), nextID: business.ID(len(seed))}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client := bizapi.NewClient(srv.URL, srv.Client(), zerolog.Nop())
	svc := board.NewService(client, board.NewStore(nil), zerolog.Nop())
	require.NoError(t, svc.Refresh(context.Background()).Wait().Err)

	h := httpserver.NewRouter(httpserver.Options{
		Service:        svc,
		Log:            zerolog.Nop(),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &console{api: api, svc: svc, handler: h}
}

func (c *console) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (c *console) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

type viewJSON struct {
	Title     string `json:"title"`
	Editing   bool   `json:"editing"`
	EditingID int64  `json:"editingId"`
	Name      string `json:"name"`
	Story     string `json:"story"`
	ActiveTag string `json:"activeTag"`
	Records   []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Analysis string `json:"aiAnalysis"`
		Tags     []struct {
			Name   string `json:"name"`
			Active bool   `json:"active"`
		} `json:"tags"`
	} `json:"records"`
	Notices []board.Notice `json:"notices"`
}

func (c *console) view(t *testing.T) viewJSON {
	t.Helper()
	rec := c.get("/api/view")
	require.Equal(t, http.StatusOK, rec.Code)
	var v viewJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seed() []business.Business {
	return []business.Business{
		{ID: 1, Name: "Bakery", Story: "  bread  ", Tags: "food,local", AIAnalysis: "Strong local demand"},
		{ID: 2, Name: "Shop", Story: "goods", Tags: "#retail#handmade"},
	}
}

func TestIndexRendersNewestFirst(t *testing.T) {
	c := newConsole(t, seed()...)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "BizData AI Analysis")
	assert.Contains(t, body, "Run analysis")
	assert.Less(t, strings.Index(body, "Shop"), strings.Index(body, "Bakery"))
	assert.Contains(t, body, "#handmade")
	assert.Contains(t, body, "Analyzing...")
	assert.Contains(t, body, "Strong local demand")
	assert.Contains(t, body, "&quot;bread&quot;")
}

func TestSubmitCreatesAndShowsNoticeOnce(t *testing.T) {
	c := newConsole(t, seed()...)
	listsBefore := c.api.count(http.MethodGet)

	rec := c.post("/businesses", url.Values{"name": {"Cafe"}, "story": {"coffee"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 1, c.api.count(http.MethodPost))
	assert.Equal(t, listsBefore+1, c.api.count(http.MethodGet))

	v := c.view(t)
	require.Len(t, v.Records, 3)
	assert.Equal(t, "Cafe", v.Records[0].Name)
	assert.Empty(t, v.Name)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgCreated, v.Notices[0].Message)

	assert.Contains(t, c.get("/").Body.String(), board.MsgCreated)
	assert.NotContains(t, c.get("/").Body.String(), board.MsgCreated)
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	c := newConsole(t, seed()...)
	c.api.setFail(true)

	rec := c.post("/businesses", url.Values{"name": {"Cafe"}, "story": {"coffee"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	v := c.view(t)
	assert.Equal(t, "Cafe", v.Name)
	assert.Equal(t, "coffee", v.Story)
	assert.Len(t, v.Records, 2)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgSubmitFailed, v.Notices[0].Message)
}

func TestSubmitSendsTextAsTyped(t *testing.T) {
	c := newConsole(t)

	rec := c.post("/businesses", url.Values{"name": {" Cafe "}, "story": {"  line one\r\nline two  "}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	c.api.mu.Lock()
	defer c.api.mu.Unlock()
	require.Len(t, c.api.records, 1)
	assert.Equal(t, " Cafe ", c.api.records[0].Name)
	assert.Equal(t, "  line one\nline two  ", c.api.records[0].Story)
}

func TestSubmitRejectsEmptyFields(t *testing.T) {
	c := newConsole(t)
	rec := c.post("/businesses", url.Values{"name": {"  "}, "story": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.api.count(http.MethodPost))
}

func TestEditFlow(t *testing.T) {
	c := newConsole(t, seed()...)

	rec := c.post("/businesses/2/edit", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#form", rec.Header().Get("Location"))

	v := c.view(t)
	assert.True(t, v.Editing)
	assert.Equal(t, int64(2), v.EditingID)
	assert.Equal(t, "Edit record", v.Title)
	assert.Equal(t, "Shop", v.Name)
	assert.Contains(t, c.get("/").Body.String(), "Update and re-analyze")

	c.post("/businesses", url.Values{"name": {"Shop 2"}, "story": {"new goods"}})
	assert.Equal(t, 1, c.api.count(http.MethodPut))
	assert.Zero(t, c.api.count(http.MethodPost))

	v = c.view(t)
	assert.False(t, v.Editing)
	assert.Equal(t, "Shop 2", v.Records[0].Name)
}

func TestCancelEditMakesNoRequest(t *testing.T) {
	c := newConsole(t, business.Business{ID: 5, Name: "A", Story: "B"})
	before := c.api.count(http.MethodGet)

	c.post("/businesses/5/edit", nil)
	c.post("/edit/cancel", nil)

	v := c.view(t)
	assert.False(t, v.Editing)
	assert.Empty(t, v.Name)
	assert.Empty(t, v.Story)
	assert.Equal(t, before, c.api.count(http.MethodGet))
}

func TestEditErrors(t *testing.T) {
	c := newConsole(t, seed()...)
	assert.Equal(t, http.StatusNotFound, c.post("/businesses/99/edit", nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.post("/businesses/abc/edit", nil).Code)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	c := newConsole(t, seed()...)

	page := c.get("/businesses/1/delete")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Bakery")

	rec := c.post("/businesses/1/delete", url.Values{"confirm": {"no"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, c.api.count(http.MethodDelete))
	assert.Empty(t, c.view(t).Notices)

	c.post("/businesses/1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, 1, c.api.count(http.MethodDelete))

	v := c.view(t)
	require.Len(t, v.Records, 1)
	assert.Equal(t, int64(2), v.Records[0].ID)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgDeleted, v.Notices[0].Message)
}

func TestDeleteFailureKeepsList(t *testing.T) {
	c := newConsole(t, seed()...)
	c.api.setFail(true)

	c.post("/businesses/1/delete", url.Values{"confirm": {"yes"}})

	v := c.view(t)
	assert.Len(t, v.Records, 2)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgDeleteFailed, v.Notices[0].Message)
}

func TestTagFilter(t *testing.T) {
	c := newConsole(t, seed()...)

	rec := c.post("/tags/toggle", url.Values{"tag": {"retail"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	v := c.view(t)
	assert.Equal(t, "retail", v.ActiveTag)
	require.Len(t, v.Records, 1)
	assert.Equal(t, "Shop", v.Records[0].Name)
	assert.True(t, v.Records[0].Tags[0].Active)
	assert.Contains(t, c.get("/").Body.String(), "Filtering by #retail")

	c.post("/tags/toggle", url.Values{"tag": {"retail"}})
	assert.Len(t, c.view(t).Records, 2)

	c.post("/tags/toggle", url.Values{"tag": {"food"}})
	c.post("/tags/clear", nil)
	assert.Empty(t, c.view(t).ActiveTag)

	assert.Equal(t, http.StatusBadRequest, c.post("/tags/toggle", url.Values{"tag": {"#bad"}}).Code)
}

func TestRefreshFailureShowsNotice(t *testing.T) {
	c := newConsole(t, seed()...)
	c.api.setFail(true)

	c.post("/refresh", nil)
	v := c.view(t)
	assert.Len(t, v.Records, 2)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgLoadFailed, v.Notices[0].Message)
}

func TestEmptyListLoads(t *testing.T) {
	c := newConsole(t)
	v := c.view(t)
	assert.Empty(t, v.Records)
	assert.Empty(t, v.Notices)
}

func TestNullListIsLoadFailure(t *testing.T) {
	c := newConsole(t, seed()...)
	c.api.mu.Lock()
	c.api.nullList = true
	c.api.mu.Unlock()

	c.post("/refresh", nil)
	v := c.view(t)
	assert.Len(t, v.Records, 2)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, board.MsgLoadFailed, v.Notices[0].Message)
}

func TestOperationalEndpoints(t *testing.T) {
	c := newConsole(t)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, c.get("/readyz").Code)
	assert.Equal(t, http.StatusOK, c.get("/health").Code)
	assert.Equal(t, http.StatusOK, c.get("/metrics").Code)
}

func TestViewCORS(t *testing.T) {
	c := newConsole(t)
	req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
