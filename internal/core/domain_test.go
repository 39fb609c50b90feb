package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		Amount:      Money{Cents: 1234},
		Category:    "Food",
		Description: "Groceries",
		Date:        NewDate(2026, 8, 15),
		Type:        Expense,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	tx := validTransaction()
	tx.Description = strings.Repeat("x", 201)
	if err := tx.Validate(); err == nil {
		t.Fatal("overlong description accepted")
	}
}

func TestTransactionJSON(t *testing.T) {
	raw := `{
		"id": 7,
		"user_id": 1,
		"amount": 400.0,
		"category": "Food",
		"description": "Groceries",
		"transaction_date": "2026-08-15",
		"transaction_type": "expense",
		"is_recurring": false,
		"created_at": "2026-08-15T10:00:00"
	}`
	// created_at without zone is not RFC3339; only the date field uses Date.
	raw = strings.Replace(raw, "2026-08-15T10:00:00", "2026-08-15T10:00:00Z", 1)

	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Amount.Cents != 40000 {
		t.Fatalf("amount = %d cents", tx.Amount.Cents)
	}
	if tx.Date.String() != "2026-08-15" {
		t.Fatalf("date = %s", tx.Date)
	}
	if tx.Type != Expense {
		t.Fatalf("type = %s", tx.Type)
	}

	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"transaction_date":"2026-08-15"`) {
		t.Fatalf("date not re-encoded as YYYY-MM-DD: %s", b)
	}
	if !strings.Contains(string(b), `"amount":400.00`) {
		t.Fatalf("amount not re-encoded as number: %s", b)
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{Category: "Food", MonthlyLimit: Money{Cents: 60000}, AlertThreshold: 0.8}
	if err := b.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
	b.AlertThreshold = 1.5
	if err := b.Validate(); err == nil {
		t.Fatal("threshold > 1 accepted")
	}
	b.AlertThreshold = 0.8
	b.MonthlyLimit = Money{}
	if err := b.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("got %v", err)
	}
}
