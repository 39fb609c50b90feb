package http

import (
	"net/http"
	"time"

	"findash/internal/auth"
	"findash/internal/core"
	"findash/internal/log"
)

type transactionPageData struct {
	Title      string
	Action     string
	Form       transactionForm
	Error      string
	Categories []string
}

// defaultCategories seed the category selector; the backend accepts any
// free-form category.
var defaultCategories = []string{
	"food", "transportation", "housing", "utilities", "entertainment",
	"healthcare", "shopping", "education", "salary", "other",
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	s.render(w, r, http.StatusOK, "transaction_form.html", transactionPageData{
		Title:      "New transaction",
		Action:     "/transactions",
		Form:       transactionForm{Date: time.Now().Format("2006-01-02"), Type: string(core.Expense)},
		Categories: defaultCategories,
	})
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request, session auth.Session) {
	form, tx, ok := s.parseTransactionForm(w, r, "New transaction", "/transactions")
	if !ok {
		return
	}
	if _, err := s.dash.CreateTransaction(r.Context(), session.UserID, tx); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Transaction create failed",
			log.FieldUserID, session.UserID, log.FieldError, err.Error())
		s.render(w, r, http.StatusBadGateway, "transaction_form.html", transactionPageData{
			Title: "New transaction", Action: "/transactions",
			Form: form, Error: apiErrorMessage(err), Categories: defaultCategories,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleTransactionEditForm(w http.ResponseWriter, r *http.Request, session auth.Session) {
	txID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	ov, err := s.dash.Overview(r.Context(), session.UserID)
	if err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	for _, tx := range ov.Transactions {
		if tx.ID == txID {
			s.render(w, r, http.StatusOK, "transaction_form.html", transactionPageData{
				Title:  "Edit transaction",
				Action: "/transactions/" + r.PathValue("id"),
				Form: transactionForm{
					Description: tx.Description,
					Amount:      tx.Amount.String(),
					Category:    tx.Category,
					Type:        string(tx.Type),
					Date:        tx.Date.String(),
					Tags:        tx.Tags,
					Notes:       tx.Notes,
					IsRecurring: tx.IsRecurring,
				},
				Categories: defaultCategories,
			})
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request, session auth.Session) {
	txID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	form, tx, ok := s.parseTransactionForm(w, r, "Edit transaction", "/transactions/"+r.PathValue("id"))
	if !ok {
		return
	}
	if _, err := s.dash.UpdateTransaction(r.Context(), session.UserID, txID, tx); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Transaction update failed",
			log.FieldUserID, session.UserID, log.FieldTxID, txID, log.FieldError, err.Error())
		s.render(w, r, http.StatusBadGateway, "transaction_form.html", transactionPageData{
			Title: "Edit transaction", Action: "/transactions/" + r.PathValue("id"),
			Form: form, Error: apiErrorMessage(err), Categories: defaultCategories,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, session auth.Session) {
	txID, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}
	if err := s.dash.DeleteTransaction(r.Context(), session.UserID, txID); err != nil {
		if s.handleAPIError(w, r, err) {
			return
		}
		s.logger.ErrorContext(r.Context(), "Transaction delete failed",
			log.FieldUserID, session.UserID, log.FieldTxID, txID, log.FieldError, err.Error())
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// parseTransactionForm validates the posted form. Invalid input re-renders
// the form without touching the backend.
func (s *Server) parseTransactionForm(w http.ResponseWriter, r *http.Request, title, action string) (transactionForm, core.Transaction, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return transactionForm{}, core.Transaction{}, false
	}
	form := transactionForm{
		Description: r.Form.Get("description"),
		Amount:      r.Form.Get("amount"),
		Category:    r.Form.Get("category"),
		Type:        r.Form.Get("transaction_type"),
		Date:        r.Form.Get("transaction_date"),
		Tags:        r.Form.Get("tags"),
		Notes:       r.Form.Get("notes"),
		IsRecurring: r.Form.Get("is_recurring") == "on",
	}
	reject := func(err error) {
		s.render(w, r, http.StatusUnprocessableEntity, "transaction_form.html", transactionPageData{
			Title: title, Action: action,
			Form: form, Error: err.Error(), Categories: defaultCategories,
		})
	}
	if err := form.Validate(); err != nil {
		reject(err)
		return form, core.Transaction{}, false
	}
	tx, err := form.payload()
	if err != nil {
		reject(err)
		return form, core.Transaction{}, false
	}
	return form, tx, true
}
