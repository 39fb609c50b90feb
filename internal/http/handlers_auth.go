package http

import (
	"net/http"

	"findash/internal/api"
	"findash/internal/auth"
	"findash/internal/log"
)

type authPageData struct {
	Error  string
	Email  string
	Name   string
	Age    string
	Income string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", authPageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.Form.Get("email"),
		Password: r.Form.Get("password"),
	}
	if err := form.Validate(); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", authPageData{Error: err.Error(), Email: form.Email})
		return
	}

	if err := s.sessions.Login(r.Context(), form.Email, form.Password); err != nil {
		status := http.StatusBadGateway
		msg := apiErrorMessage(err)
		if api.IsRequestRejected(err) || api.IsAuthExpired(err) {
			status = http.StatusUnauthorized
			msg = "Invalid email or password."
		}
		s.logger.InfoContext(r.Context(), "Login failed", log.FieldError, err.Error())
		s.render(w, r, status, "login.html", authPageData{Error: msg, Email: form.Email})
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register.html", authPageData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := registerForm{
		Name:            r.Form.Get("name"),
		Email:           r.Form.Get("email"),
		Password:        r.Form.Get("password"),
		ConfirmPassword: r.Form.Get("confirm_password"),
		Age:             r.Form.Get("age"),
		AnnualIncome:    r.Form.Get("annual_income"),
	}
	echo := authPageData{Email: form.Email, Name: form.Name, Age: form.Age, Income: form.AnnualIncome}

	if err := form.Validate(); err != nil {
		echo.Error = err.Error()
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", echo)
		return
	}
	req, err := form.payload()
	if err != nil {
		echo.Error = err.Error()
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", echo)
		return
	}

	if err := s.sessions.Register(r.Context(), req); err != nil {
		s.logger.InfoContext(r.Context(), "Registration failed", log.FieldError, err.Error())
		echo.Error = apiErrorMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", echo)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout always succeeds locally, whatever the backend thinks. Cached
// and snapshotted overview data is dropped along with the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, state := s.sessions.Current(); state == auth.StateAuthenticated {
		s.dash.Forget(r.Context(), session.UserID)
	}
	s.sessions.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
