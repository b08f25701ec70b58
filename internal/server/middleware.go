package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	loggerKey
)

// sessionID returns the session of the request being served.
func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

// loggerFrom returns the request logger, or fallback outside a request.
func loggerFrom(ctx context.Context, fallback *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// logRequests logs one line per request and puts a request-scoped logger
// carrying the request ID into the context.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ctx := context.WithValue(r.Context(), loggerKey, logger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// limitBody caps request bodies at the configured size.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// withSession resolves the X-Session-ID header to a session, creating and
// saving a new one when the header is missing or unknown.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		st, created, err := s.sessions.LoadOrCreate(ctx, r.Header.Get(SessionHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if created {
			if err := s.sessions.Save(ctx, st); err != nil {
				s.writeError(w, r, err)
				return
			}
			loggerFrom(ctx, s.logger).Debug("created session", "session", st.ID)
		}
		w.Header().Set(SessionHeader, st.ID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey, st.ID)))
	})
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError maps err to a status code and a {code, message} body.
// Server-side failures are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Code:    errors.ErrCodeInvalidInput,
			Message: "request body too large",
		})
		return
	}

	status := errors.HTTPStatus(code)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context(), s.logger).Error("request failed", "path", r.URL.Path, "error", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
