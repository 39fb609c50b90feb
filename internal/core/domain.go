package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date is a day-granular date encoded as YYYY-MM-DD on the wire.
	Date struct {
		time.Time
	}

	// Transaction is a single income or expense entry. The backend owns the
	// record; the client holds a transient, refreshable copy.
	Transaction struct {
		ID          int64           `json:"id,omitempty"`
		UserID      int64           `json:"user_id,omitempty"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"transaction_date"`
		Type        TransactionType `json:"transaction_type"`
		Tags        string          `json:"tags,omitempty"`
		Notes       string          `json:"notes,omitempty"`
		IsRecurring bool            `json:"is_recurring"`
		CreatedAt   time.Time       `json:"created_at,omitempty"`
	}

	// User mirrors the backend user record. MonthlyIncome is derived
	// server-side from AnnualIncome.
	User struct {
		ID            int64     `json:"id"`
		Name          string    `json:"name"`
		Email         string    `json:"email"`
		Age           int       `json:"age"`
		AnnualIncome  Money     `json:"annual_income"`
		MonthlyIncome Money     `json:"monthly_income"`
		CreatedAt     time.Time `json:"created_at,omitempty"`
		IsActive      bool      `json:"is_active,omitempty"`
	}

	// Budget is a per-category monthly spending limit.
	Budget struct {
		ID             int64     `json:"id,omitempty"`
		UserID         int64     `json:"user_id,omitempty"`
		Category       string    `json:"category"`
		MonthlyLimit   Money     `json:"monthly_limit"`
		AlertThreshold float64   `json:"alert_threshold"`
		RolloverUnused bool      `json:"rollover_unused"`
		IsActive       bool      `json:"is_active,omitempty"`
		CreatedAt      time.Time `json:"created_at,omitempty"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	// Some backend responses carry a full timestamp for date fields.
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = t
	return nil
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (tt TransactionType) Validate() error {
	switch tt {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (t Transaction) Validate() error {
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.MonthlyLimit.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.AlertThreshold <= 0 || b.AlertThreshold > 1 {
		return errors.New("alert threshold must be between 0 and 1")
	}
	return nil
}
