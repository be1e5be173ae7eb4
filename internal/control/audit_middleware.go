package control

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
)

// maxRequestBody bounds what the middleware buffers before auth has run.
const maxRequestBody = 64 << 10

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := model.AuditEntry{
			Timestamp: time.Now().UTC(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Action:    actionName(r),
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.Operator = username
		}
		if snap := s.desk.Snapshot(); snap.Order != nil {
			entry.OrderID = snap.Order.ID
		}

		wrw := newResponseWriterWrapper(w)

		if r.Body != nil && !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			requestBody, err := io.ReadAll(http.MaxBytesReader(wrw, r.Body, maxRequestBody))
			if len(requestBody) > maxAuditBody {
				entry.Request = string(requestBody[:maxAuditBody])
			} else {
				entry.Request = string(requestBody)
			}
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					respondError(wrw, http.StatusRequestEntityTooLarge, "Request body too large")
				} else {
					respondError(wrw, http.StatusBadRequest, "Invalid request body")
				}
				entry.StatusCode = wrw.GetStatusCode()
				entry.Response = string(wrw.GetBody())
				s.AuditManager.LogEntry(r.Context(), entry)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func actionName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return "unknown"
}
