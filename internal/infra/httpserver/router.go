package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/bizdata-console/internal/application/board"
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
	"github.com/bryanwahyu/bizdata-console/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var errBadRequest = errors.New("bad request")

// Options wires the router. Limiter and Checkers are optional.
type Options struct {
	Service        *board.Service
	Log            zerolog.Logger
	Limiter        *middleware.RateLimiter
	Checkers       map[string]middleware.HealthChecker
	AllowedOrigins []string
}

type Router struct {
	svc *board.Service
	log zerolog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := &Router{svc: opts.Service, log: opts.Log}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware(opts.Log))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Group(func(rt chi.Router) {
		if opts.Limiter != nil {
			rt.Use(middleware.RateLimit(opts.Limiter))
		}

		rt.Get("/", r.wrap(r.handleIndex))
		rt.Post("/businesses", r.wrap(r.handleSubmit))
		rt.Post("/businesses/{id}/edit", r.wrap(r.handleStartEdit))
		rt.Get("/businesses/{id}/delete", r.wrap(r.handleConfirmDelete))
		rt.Post("/businesses/{id}/delete", r.wrap(r.handleDelete))
		rt.Post("/edit/cancel", r.wrap(r.handleCancelEdit))
		rt.Post("/tags/toggle", r.wrap(r.handleToggleTag))
		rt.Post("/tags/clear", r.wrap(r.handleClearTag))
		rt.Post("/refresh", r.wrap(r.handleRefresh))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		rt.Get("/view", r.wrap(r.handleView))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, board.ErrUnknownRecord):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, board.ErrBusy):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, board.ErrInvalidDraft), errors.Is(err, errBadRequest):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				r.log.Error().Err(err).Str("path", req.URL.Path).Msg("handler error")
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}
	}
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func backToIndex(w http.ResponseWriter, req *http.Request, anchor string) {
	http.Redirect(w, req, "/"+anchor, http.StatusSeeOther)
}

func pathID(req *http.Request) (business.ID, error) {
	id, err := middleware.ValidateID(chi.URLParam(req, "id"))
	if err != nil {
		return 0, badRequest(err)
	}
	return business.ID(id), nil
}

// GET /
// Pending notices are shown once.
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	notices := r.svc.Store.TakeNotices()
	v := buildView(r.svc.State(), notices)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return templates.ExecuteTemplate(w, "page.html", v)
}

// GET /api/view
func (r *Router) handleView(w http.ResponseWriter, req *http.Request) error {
	st := r.svc.State()
	v := buildView(st, st.Notices)
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /businesses
// Form: name, story. Creates, or updates the record in edit mode.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}
	// browsers post textarea line breaks as CRLF, the payload carries LF
	name := formText(req, "name")
	story := formText(req, "story")
	if err := middleware.ValidateDraft(middleware.SanitizeString(name), middleware.SanitizeString(story)); err != nil {
		return fmt.Errorf("%w: %v", board.ErrInvalidDraft, err)
	}

	res := r.svc.Submit(req.Context(), name, story).Await(req.Context())
	if errors.Is(res.Err, board.ErrBusy) {
		return res.Err
	}
	// remote failures are already notices on the page
	backToIndex(w, req, "")
	return nil
}

// POST /businesses/{id}/edit
func (r *Router) handleStartEdit(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	if err := r.svc.StartEdit(id); err != nil {
		return err
	}
	backToIndex(w, req, "#form")
	return nil
}

// POST /edit/cancel
func (r *Router) handleCancelEdit(w http.ResponseWriter, req *http.Request) error {
	r.svc.CancelEdit()
	backToIndex(w, req, "")
	return nil
}

// GET /businesses/{id}/delete
func (r *Router) handleConfirmDelete(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	rec, _ := r.svc.State().Find(id)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return templates.ExecuteTemplate(w, "confirm.html", struct {
		ID   int64
		Name string
	}{ID: int64(id), Name: rec.Name})
}

// POST /businesses/{id}/delete
// Form: confirm=yes. Anything else is a silent no-op.
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}
	confirmed := req.PostForm.Get("confirm") == "yes"

	r.svc.Delete(req.Context(), id, confirmed).Await(req.Context())
	backToIndex(w, req, "")
	return nil
}

// POST /tags/toggle
// Form: tag
func (r *Router) handleToggleTag(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}
	tag := req.PostForm.Get("tag")
	if err := middleware.ValidateTag(tag); err != nil {
		return badRequest(err)
	}
	r.svc.ToggleTag(tag)
	backToIndex(w, req, "")
	return nil
}

// POST /tags/clear
func (r *Router) handleClearTag(w http.ResponseWriter, req *http.Request) error {
	r.svc.ClearTag()
	backToIndex(w, req, "")
	return nil
}

// POST /refresh
func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	r.svc.Refresh(req.Context()).Await(req.Context())
	backToIndex(w, req, "")
	return nil
}

func formText(req *http.Request, key string) string {
	return strings.ReplaceAll(req.PostForm.Get(key), "\r\n", "\n")
}
