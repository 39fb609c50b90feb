package http

import (
	"net/http"

	"findash/internal/auth"
	"findash/internal/dashboard"
	"findash/internal/log"
)

type dashboardPageData struct {
	UserName string
	Overview dashboard.Overview
	Error    string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, session auth.Session) {
	ov, err := s.dash.Overview(r.Context(), session.UserID)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Dashboard load failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
		s.render(w, r, http.StatusBadGateway, "dashboard.html", dashboardPageData{
			UserName: session.Name,
			Error:    apiErrorMessage(err),
		})
		return
	}
	if ov.Stale {
		s.logger.WarnContext(r.Context(), "Rendering stale overview",
			log.FieldUserID, session.UserID, log.FieldStale, true)
	}
	s.render(w, r, http.StatusOK, "dashboard.html", dashboardPageData{UserName: session.Name, Overview: ov})
}

func (s *Server) handleDashboardRefresh(w http.ResponseWriter, r *http.Request, session auth.Session) {
	if _, err := s.dash.Refresh(r.Context(), session.UserID); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.WarnContext(r.Context(), "Dashboard refresh failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
