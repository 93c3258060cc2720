// Package server is the server-rendered gateway: it loads backend
// content, runs it through the normalization layer and answers with the
// view payloads pages render from. Public read routes degrade to empty
// results when the backend is down; only a missing post is a hard 404.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"comuna-reader/internal/auth"
	"comuna-reader/internal/backend"
	"comuna-reader/internal/engine"
	"comuna-reader/internal/settings"
	"comuna-reader/internal/utils"
	"comuna-reader/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const viewTimeout = 15 * time.Second

type Server struct {
	router  chi.Router
	content *backend.Client
	engine  *engine.Engine
	logger  *slog.Logger
	metrics *utils.MetricsCollector
}

func NewServer(content *backend.Client, eng *engine.Engine, logger *slog.Logger, metrics *utils.MetricsCollector) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		content: content,
		engine:  eng,
		logger:  logger,
		metrics: metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/view", func(r chi.Router) {
		r.Get("/home", s.handleHome)
		r.Get("/fresh", s.handleFresh)
		r.Get("/author/{username}", s.handleAuthor)
		r.Get("/rubrics", s.handleRubrics)
		r.Get("/rubric/{slug}", s.handleRubric)
		r.Get("/tags", s.handleTags)
		r.Get("/tag/{tag}", s.handleTag)
		r.Get("/post/{id}", s.handlePost)
		r.Get("/search", s.handleSearch)
	})

	if eng != nil {
		r.Route("/api/state", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Patch("/settings", s.handleUpdateSettings)
		})
		r.Route("/api/session", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Post("/refresh", s.handleRefresh)
			r.Get("/verification-code", s.handleVerificationCode)
		})
	}

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// requestID tags every request so log lines from one render correlate.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.metrics != nil {
			s.metrics.IncrementRequests()
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	if s.metrics != nil {
		s.metrics.IncrementErrors()
	}
	status := http.StatusInternalServerError
	message := "internal error"
	if appErr, ok := err.(*utils.AppError); ok {
		status = utils.AppErrorToHTTPStatus(appErr.Code)
		message = appErr.Message
	}
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if s.metrics != nil {
		payload["metrics"] = s.metrics.Snapshot()
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func feedOptionsFromQuery(r *http.Request) backend.FeedOptions {
	q := r.URL.Query()
	return backend.FeedOptions{
		HideRead: q.Get("hide_read") == "1",
		OnlyRead: q.Get("only_read") == "1",
	}
}

// HomeView is the aggregate payload for the landing page.
type HomeView struct {
	Posts          []views.PostView  `json:"posts"`
	RecentComments []backend.Comment `json:"recent_comments"`
	TopAuthors     []backend.Author  `json:"top_authors"`
}

// handleHome loads the three home sections concurrently. Each section
// tolerates failure on its own: a dead backend renders an empty page,
// not an error page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	opts := feedOptionsFromQuery(r)
	view := HomeView{
		Posts:          []views.PostView{},
		RecentComments: []backend.Comment{},
		TopAuthors:     []backend.Author{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := s.content.HomeFeed(gctx, opts)
		if err != nil {
			s.logger.Warn("home feed unavailable", "err", err)
			return nil
		}
		view.Posts = views.ToPostViews(posts, nil)
		return nil
	})
	g.Go(func() error {
		comments, err := s.content.RecentComments(gctx, 5)
		if err != nil {
			s.logger.Warn("recent comments unavailable", "err", err)
			return nil
		}
		view.RecentComments = comments
		return nil
	})
	g.Go(func() error {
		authors, err := s.content.TopAuthorsMonth(gctx, 5)
		if err != nil {
			s.logger.Warn("top authors unavailable", "err", err)
			return nil
		}
		view.TopAuthors = authors
		return nil
	})
	_ = g.Wait()

	s.respondJSON(w, http.StatusOK, view)
}

// PostListView is the payload for every simple post-list page.
type PostListView struct {
	Posts []views.PostView `json:"posts"`
}

func (s *Server) respondPostList(w http.ResponseWriter, posts []backend.Post, fallbackAuthor *backend.Author, err error) {
	if err != nil {
		s.logger.Warn("post list unavailable", "err", err)
		s.respondJSON(w, http.StatusOK, PostListView{Posts: []views.PostView{}})
		return
	}
	s.respondJSON(w, http.StatusOK, PostListView{Posts: views.ToPostViews(posts, fallbackAuthor)})
}

func (s *Server) handleFresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	posts, err := s.content.FreshFeed(ctx, feedOptionsFromQuery(r))
	s.respondPostList(w, posts, nil, err)
}

// AuthorView carries the author profile alongside their normalized
// posts; the profile rides the envelope, so it is the fallback author
// for every post in the list.
type AuthorView struct {
	Author *backend.Author  `json:"author"`
	Posts  []views.PostView `json:"posts"`
}

func (s *Server) handleAuthor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	username := chi.URLParam(r, "username")
	author, posts, err := s.content.AuthorPosts(ctx, username)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			s.respondError(w, err)
			return
		}
		s.logger.Warn("author posts unavailable", "author", username, "err", err)
		s.respondJSON(w, http.StatusOK, AuthorView{Posts: []views.PostView{}})
		return
	}
	s.respondJSON(w, http.StatusOK, AuthorView{
		Author: author,
		Posts:  views.ToPostViews(posts, author),
	})
}

func (s *Server) handleRubrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	opts := backend.RubricsOptions{IncludeHidden: r.URL.Query().Get("include_hidden") == "1"}
	rubrics, err := s.content.Rubrics(ctx, opts)
	if err != nil {
		s.logger.Warn("rubrics unavailable", "err", err)
		rubrics = []backend.Rubric{}
	}
	if rubrics == nil {
		rubrics = []backend.Rubric{}
	}
	s.respondJSON(w, http.StatusOK, map[string][]backend.Rubric{"rubrics": rubrics})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	tags, err := s.content.Tags(ctx)
	if err != nil {
		s.logger.Warn("tags unavailable", "err", err)
		tags = []backend.Tag{}
	}
	if tags == nil {
		tags = []backend.Tag{}
	}
	s.respondJSON(w, http.StatusOK, map[string][]backend.Tag{"tags": tags})
}

func (s *Server) handleRubric(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	posts, err := s.content.RubricPosts(ctx, chi.URLParam(r, "slug"))
	s.respondPostList(w, posts, nil, err)
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	posts, err := s.content.TagPosts(ctx, chi.URLParam(r, "tag"))
	s.respondPostList(w, posts, nil, err)
}

// PostDetailView pairs the normalized post with its comment thread and
// the canonical site path for redirects.
type PostDetailView struct {
	Post     views.PostView    `json:"post"`
	Comments []backend.Comment `json:"comments"`
	Path     string            `json:"path"`
}

// handlePost is the one read route with hard failures: a post that does
// not exist is a 404, not an empty page.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "invalid post id", err))
		return
	}

	var (
		post     *backend.Post
		comments []backend.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		post, loadErr = s.content.PostDetail(gctx, id)
		return loadErr
	})
	g.Go(func() error {
		list, loadErr := s.content.PostComments(gctx, id)
		if loadErr != nil {
			s.logger.Warn("post comments unavailable", "post", id, "err", loadErr)
			return nil
		}
		comments = list
		return nil
	})
	if err := g.Wait(); err != nil {
		s.respondError(w, err)
		return
	}
	if comments == nil {
		comments = []backend.Comment{}
	}

	s.respondJSON(w, http.StatusOK, PostDetailView{
		Post:     views.ToPostView(*post, nil),
		Comments: comments,
		Path:     backend.PostPath(post.ID, post.Title),
	})
}

// StateView is the current client state: the active settings record and
// whoever the session belongs to (nil when anonymous).
type StateView struct {
	Settings settings.Settings `json:"settings"`
	User     *auth.SiteUser    `json:"user"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	session := s.engine.Session()
	s.respondJSON(w, http.StatusOK, StateView{
		Settings: s.engine.Settings(),
		User:     session.User,
	})
}

// handleUpdateSettings merges the request body into the current record.
// Unknown keys are ignored, absent keys keep their current values.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "unreadable body", err))
		return
	}
	if !json.Valid(raw) {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "malformed settings patch", nil))
		return
	}

	updated, err := s.engine.UpdateSettings(func(current *settings.Settings) {
		_ = json.Unmarshal(raw, current)
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, utils.NewAppError(utils.ErrInvalidInput, "malformed login payload", err))
		return
	}

	user, err := s.engine.Login(payload.Username, payload.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.Refresh()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleVerificationCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.engine.VerificationCode()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"code": code})
}

// SearchView keeps authors raw and normalizes the post hits.
type SearchView struct {
	Query   string           `json:"query"`
	Page    int              `json:"page"`
	Posts   []views.PostView `json:"posts"`
	Authors []backend.Author `json:"authors"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), viewTimeout)
	defer cancel()

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := s.content.Search(ctx, q.Get("q"), page, limit, q.Get("type"), q.Get("sort"))
	if err != nil {
		s.logger.Warn("search unavailable", "err", err)
		s.respondJSON(w, http.StatusOK, SearchView{
			Query:   q.Get("q"),
			Page:    page,
			Posts:   []views.PostView{},
			Authors: []backend.Author{},
		})
		return
	}

	authors := results.Authors
	if authors == nil {
		authors = []backend.Author{}
	}
	s.respondJSON(w, http.StatusOK, SearchView{
		Query:   results.Query,
		Page:    results.Page,
		Posts:   views.ToPostViews(results.Posts, nil),
		Authors: authors,
	})
}
