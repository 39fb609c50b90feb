package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"findash/internal/api"
	"findash/internal/log"
)

// render executes a page template into a buffer before touching the
// response, so headers and status go out only for a page that actually
// rendered. Render failures become a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(), "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleAPIError is the single place backend failures turn into responses.
// An expired session drops local state and lands on the login page; every
// other failure re-renders the current page with a message.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) (handled bool) {
	if api.IsAuthExpired(err) {
		s.logger.InfoContext(r.Context(), "Session expired, redirecting to login")
		s.sessions.Invalidate()
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return true
	}
	return false
}

// apiErrorMessage maps a client error to user-facing text.
func apiErrorMessage(err error) string {
	var apiErr *api.Error
	switch {
	case api.IsTransport(err):
		return "Could not reach the server. Check your connection and try again."
	case api.IsRequestRejected(err) && errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// pathID parses the {id} wildcard of the route.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// formatDollars formats cents as a dollar string (e.g. "$12.34").
func formatDollars(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// formatPercent renders an already-scaled percentage such as 42.5 as "42.5%".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
