package http

import (
	"net/http"

	"findash/internal/auth"
	"findash/internal/core"
	"findash/internal/log"
)

type budgetsPageData struct {
	UserName string
	Budgets  []core.Budget
	Form     budgetForm
	Error    string
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request, session auth.Session) {
	budgets, err := s.dash.Budgets(r.Context(), session.UserID)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Budget list failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
		s.render(w, r, http.StatusBadGateway, "budgets.html", budgetsPageData{
			UserName: session.Name, Error: apiErrorMessage(err),
		})
		return
	}
	s.render(w, r, http.StatusOK, "budgets.html", budgetsPageData{UserName: session.Name, Budgets: budgets})
}

func (s *Server) handleBudgetSave(w http.ResponseWriter, r *http.Request, session auth.Session) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := budgetForm{
		Category:       r.Form.Get("category"),
		MonthlyLimit:   r.Form.Get("monthly_limit"),
		AlertThreshold: r.Form.Get("alert_threshold"),
		RolloverUnused: r.Form.Get("rollover_unused") == "on",
	}
	reject := func(err error, status int) {
		budgets, _ := s.dash.Budgets(r.Context(), session.UserID)
		s.render(w, r, status, "budgets.html", budgetsPageData{
			UserName: session.Name, Budgets: budgets, Form: form, Error: err.Error(),
		})
	}
	if err := form.Validate(); err != nil {
		reject(err, http.StatusUnprocessableEntity)
		return
	}
	budget, err := form.payload()
	if err != nil {
		reject(err, http.StatusUnprocessableEntity)
		return
	}
	if _, err := s.dash.SaveBudget(r.Context(), session.UserID, budget); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Budget save failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
		reject(err, http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/budgets", http.StatusSeeOther)
}

func (s *Server) handleBudgetDelete(w http.ResponseWriter, r *http.Request, session auth.Session) {
	budgetID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid budget id", http.StatusBadRequest)
		return
	}
	if err := s.dash.DeleteBudget(r.Context(), session.UserID, budgetID); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Budget delete failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
	}
	http.Redirect(w, r, "/budgets", http.StatusSeeOther)
}
