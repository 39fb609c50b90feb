package http

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"findash/internal/api"
	"findash/internal/core"
)

// Form payloads are validated locally before any request leaves the process.
// A rejected form costs zero network calls.

type loginForm struct {
	Email    string
	Password string
}

func (f loginForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Password, validation.Required),
	)
}

type registerForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Age             string
	AnnualIncome    string
}

func (f registerForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&f.ConfirmPassword, validation.Required,
			validation.In(f.Password).Error("passwords do not match")),
		validation.Field(&f.Age, validation.Required, is.Digit),
		validation.Field(&f.AnnualIncome, validation.Required),
	)
}

// payload converts validated form strings into the registration request.
func (f registerForm) payload() (api.RegisterRequest, error) {
	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		return api.RegisterRequest{}, validation.Errors{"Age": err}
	}
	cents, err := core.ParseDecimalToCents(f.AnnualIncome)
	if err != nil {
		return api.RegisterRequest{}, validation.Errors{"AnnualIncome": err}
	}
	return api.RegisterRequest{
		Name:            sanitizeInput(f.Name),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		Age:             age,
		AnnualIncome:    core.Money{Cents: cents},
	}, nil
}

type transactionForm struct {
	Description string
	Amount      string
	Category    string
	Type        string
	Date        string
	Tags        string
	Notes       string
	IsRecurring bool
}

func (f transactionForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Description, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Amount, validation.Required),
		validation.Field(&f.Category, validation.Required),
		validation.Field(&f.Type, validation.Required,
			validation.In(string(core.Income), string(core.Expense))),
		validation.Field(&f.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// payload converts the form into a transaction, re-checking the domain
// invariants (positive amount, non-empty description) on the typed value.
func (f transactionForm) payload() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(f.Amount)
	if err != nil {
		return core.Transaction{}, validation.Errors{"Amount": err}
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Transaction{}, validation.Errors{"Date": err}
	}
	tx := core.Transaction{
		Description: sanitizeInput(f.Description),
		Amount:      core.Money{Cents: cents},
		Category:    sanitizeInput(f.Category),
		Type:        core.TransactionType(f.Type),
		Date:        date,
		Tags:        sanitizeInput(f.Tags),
		Notes:       sanitizeInput(f.Notes),
		IsRecurring: f.IsRecurring,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

type budgetForm struct {
	Category       string
	MonthlyLimit   string
	AlertThreshold string
	RolloverUnused bool
}

func (f budgetForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Category, validation.Required),
		validation.Field(&f.MonthlyLimit, validation.Required),
	)
}

func (f budgetForm) payload() (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(f.MonthlyLimit)
	if err != nil {
		return core.Budget{}, validation.Errors{"MonthlyLimit": err}
	}
	threshold := 0.8
	if v := strings.TrimSpace(f.AlertThreshold); v != "" {
		threshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return core.Budget{}, validation.Errors{"AlertThreshold": err}
		}
	}
	b := core.Budget{
		Category:       sanitizeInput(f.Category),
		MonthlyLimit:   core.Money{Cents: cents},
		AlertThreshold: threshold,
		RolloverUnused: f.RolloverUnused,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
