package server

import (
	"bufio"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/logger"
)

// Handler returns the full HTTP surface wrapped in CORS and request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /ws", s.HandleWebSocket)

	mux.HandleFunc("GET /api/gigs", s.handleListGigs)
	mux.HandleFunc("POST /api/gigs", s.handlePostGig)

	mux.HandleFunc("GET /api/applications", s.handleListApplications)
	mux.HandleFunc("POST /api/applications", s.handleApply)
	mux.HandleFunc("POST /api/applications/{id}/accept", s.handleAccept)
	mux.HandleFunc("POST /api/applications/{id}/reject", s.handleReject)
	mux.HandleFunc("PUT /api/applications/{id}/status", s.handleSetStatus)

	mux.HandleFunc("GET /api/course", s.handleGetCourse)
	mux.HandleFunc("PUT /api/course", s.handleEnroll)
	mux.HandleFunc("DELETE /api/course", s.handleDropCourse)

	mux.HandleFunc("GET /api/guide", s.handleGetGuide)
	mux.HandleFunc("POST /api/guide", s.handleGuideShown)

	mux.HandleFunc("GET /api/summary", s.handleSummary)

	if s.catalog != nil {
		mux.HandleFunc("GET /api/catalog", s.handleCatalog)
		mux.HandleFunc("GET /api/profile", s.handleProfile)
		mux.HandleFunc("POST /api/catalog/{id}/quiz", s.handleStartQuiz)
		mux.HandleFunc("POST /api/catalog/{id}/quiz/submit", s.handleSubmitQuiz)
		mux.HandleFunc("POST /api/catalog/{id}/apply", s.handleCatalogApply)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(s.requestLogger(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the WebSocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// requestLogger tags each request with an id and logs its outcome
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		if logger.ShouldOutput(s.opts.Verbosity, logger.OutputHTTPCalls) {
			s.log.Infow("HTTP request",
				logger.FieldRequestID, id,
				logger.FieldMethod, r.Method,
				logger.FieldPath, r.URL.Path,
				logger.FieldStatus, rec.status,
				logger.FieldDurationMS, time.Since(start).Milliseconds(),
			)
		}
	})
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts requests without an Origin header (CLI clients, tests)
// and origins whose scheme and host match a configured origin. An allowed
// origin without a port matches any port.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	got, err := url.Parse(origin)
	if err != nil || got.Host == "" {
		return false
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		want, err := url.Parse(allowed)
		if err != nil || want.Host == "" {
			continue
		}
		if !strings.EqualFold(got.Scheme, want.Scheme) || !strings.EqualFold(got.Hostname(), want.Hostname()) {
			continue
		}
		if want.Port() == "" || want.Port() == got.Port() {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades the request and registers the view with the hub
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("WebSocket upgrade failed", logger.FieldError, err)
		return
	}

	client := newClient(s, conn)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}
