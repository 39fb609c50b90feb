package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"findash/internal/core"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (f *fakeTokens) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = true
	return nil
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Options{BaseURL: srv.URL, Tokens: tokens, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, srv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"John Doe","email":"john@example.com","age":30,"annual_income":75000,"monthly_income":6250}`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok123"})

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if user.Email != "john@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if user.AnnualIncome.Cents != 7500000 {
		t.Fatalf("annual income = %d cents", user.AnnualIncome.Cents)
	}
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	var sawAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		w.Write([]byte(`{"status":"healthy","database":"connected"}`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{})

	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if sawAuth {
		t.Fatal("Authorization header sent without a stored token")
	}
}

func TestUnauthorizedClearsStoreAndStops(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	})
	tokens := &fakeTokens{token: "stale"}
	client, _ := newTestClient(t, handler, tokens)

	_, err := client.ListTransactions(context.Background(), 1, ListOptions{})
	if !IsAuthExpired(err) {
		t.Fatalf("expected auth-expired, got %v", err)
	}
	if !tokens.cleared {
		t.Fatal("token store not cleared after 401")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request (no retry), got %d", calls)
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Message != "Could not validate credentials" {
		t.Fatalf("message = %v", err)
	}
}

func TestRejectedWithServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	})
	client, _ := newTestClient(t, handler, nil)

	_, err := client.Login(context.Background(), "john@example.com", "x")
	if !IsRequestRejected(err) {
		t.Fatalf("expected request-rejected, got %v", err)
	}
	if err.Error() != "Email already registered" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestRejectedMalformedBodyFallsBackToGenericMessage(t *testing.T) {
	bodies := []string{"", "not json at all <", `{"unexpected":"shape"}`}
	for _, body := range bodies {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(body))
		})
		client, _ := newTestClient(t, handler, nil)

		_, err := client.Health(context.Background())
		if !IsRequestRejected(err) {
			t.Fatalf("body %q: expected request-rejected, got %v", body, err)
		}
		if err.Error() != "HTTP error 503" {
			t.Fatalf("body %q: message = %q", body, err.Error())
		}
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.Close() // nothing listening anymore

	_, err = client.Health(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if err.Error() == "" {
		t.Fatal("transport failure must carry the underlying message")
	}
}

func TestDecodeFailureOnSuccessStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"truncated":`))
	})
	client, _ := newTestClient(t, handler, nil)

	_, err := client.Health(context.Background())
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind != KindDecode {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestLoginDecodesGrant(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{
			"access_token": "jwt-abc",
			"token_type": "bearer",
			"user": {"id": 1, "name": "John Doe", "email": "john@example.com", "age": 30, "annual_income": 75000, "monthly_income": 6250}
		}`))
	})
	client, _ := newTestClient(t, handler, nil)

	grant, err := client.Login(context.Background(), "john@example.com", "demo123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if grant.AccessToken != "jwt-abc" || grant.User.Email != "john@example.com" {
		t.Fatalf("grant = %+v", grant)
	}
}

func TestListTransactionsQueryAndDecode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7/transactions/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("skip") != "10" || r.URL.Query().Get("limit") != "25" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":1,"user_id":7,"amount":400.0,"category":"Food","description":"Groceries","transaction_date":"2026-08-15","transaction_type":"expense","is_recurring":false},
			{"id":2,"user_id":7,"amount":5000.0,"category":"Salary","description":"Monthly salary","transaction_date":"2026-08-01","transaction_type":"income","is_recurring":true}
		]`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	txs, err := client.ListTransactions(context.Background(), 7, ListOptions{Skip: 10, Limit: 25})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d", len(txs))
	}
	if txs[0].Amount.Cents != 40000 || txs[0].Type != core.Expense {
		t.Fatalf("tx[0] = %+v", txs[0])
	}
	if !txs[1].IsRecurring {
		t.Fatal("recurring flag lost")
	}
}

func TestSpendingAnalysisDecode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7/spending-analysis/" || r.URL.Query().Get("months") != "6" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"total_income": 15000.0,
			"total_expenses": 6450.0,
			"savings_rate": 0.57,
			"top_categories": [{"category":"Housing","amount":4500.0,"percentage":69.8}],
			"monthly_trends": [{"month":"2026-07","income":5000.0,"expenses":2150.0,"net":2850.0}],
			"transaction_count": 12
		}`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	analysis, err := client.SpendingAnalysis(context.Background(), 7, 6)
	if err != nil {
		t.Fatalf("SpendingAnalysis: %v", err)
	}
	if analysis.TotalExpenses.Cents != 645000 {
		t.Fatalf("total expenses = %d", analysis.TotalExpenses.Cents)
	}
	// The wire value 0.57 is a fraction and must come back scaled to 0-100.
	if analysis.SavingsRate < 56.9 || analysis.SavingsRate > 57.1 {
		t.Fatalf("savings rate = %v, want 57", analysis.SavingsRate)
	}
	if len(analysis.TopCategories) != 1 || analysis.TopCategories[0].Category != "Housing" {
		t.Fatalf("top categories = %+v", analysis.TopCategories)
	}
	if analysis.MonthlyTrends[0].Net.Cents != 285000 {
		t.Fatalf("net = %d", analysis.MonthlyTrends[0].Net.Cents)
	}
}

func TestTransactionsByCategoryEscapesPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/users/7/transactions/category/dining%20out" {
			t.Errorf("path = %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`[{"id":3,"user_id":7,"amount":42.0,"category":"dining out","description":"Dinner","transaction_date":"2026-08-20","transaction_type":"expense"}]`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	txs, err := client.TransactionsByCategory(context.Background(), 7, "dining out")
	if err != nil {
		t.Fatalf("TransactionsByCategory: %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "dining out" {
		t.Fatalf("txs = %+v", txs)
	}
}

func TestBudgetAlertsDecode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7/budget-alerts/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`[{
			"category": "food",
			"budget_limit": 600.0,
			"current_spending": 610.0,
			"percentage_used": 101.7,
			"remaining": -10.0,
			"alert_threshold": 0.8,
			"is_over_budget": true,
			"is_near_limit": true,
			"days_remaining_in_month": 9
		}]`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	alerts, err := client.BudgetAlerts(context.Background(), 7)
	if err != nil {
		t.Fatalf("BudgetAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len = %d", len(alerts))
	}
	if alerts[0].Remaining.Cents != -1000 || alerts[0].DaysRemaining != 9 {
		t.Fatalf("alert = %+v", alerts[0])
	}
	if alerts[0].Level() != "critical" {
		t.Fatalf("level = %q", alerts[0].Level())
	}
}

func TestListUsersQueryAndDecode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/" || r.URL.Query().Get("skip") != "5" || r.URL.Query().Get("limit") != "10" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":1,"name":"John Doe","email":"john@example.com","age":30,"annual_income":75000}]`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	users, err := client.ListUsers(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Name != "John Doe" {
		t.Fatalf("users = %+v", users)
	}
}

func TestGetUser(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/3" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":3,"name":"Jane Roe","email":"jane@example.com","age":28,"annual_income":64000}`))
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	user, err := client.GetUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.ID != 3 || user.Email != "jane@example.com" {
		t.Fatalf("user = %+v", user)
	}
}

func TestCreateUserPostsPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"id":4,"name":"Jane Roe","email":"jane@example.com","age":28,"annual_income":64000}`))
	})
	client, _ := newTestClient(t, handler, nil)

	user, err := client.CreateUser(context.Background(), CreateUserRequest{
		Name: "Jane Roe", Email: "jane@example.com", Age: 28,
		AnnualIncome: core.Money{Cents: 6400000},
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 4 {
		t.Fatalf("user = %+v", user)
	}
}

func TestLogoutPostsToBackend(t *testing.T) {
	var gotPath, gotMethod string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, handler, &fakeTokens{token: "tok"})

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if gotPath != "/auth/logout" || gotMethod != http.MethodPost {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
}

func TestServerMessageStructuredDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","amount"],"msg":"Amount must be positive"}]}`))
	})
	client, _ := newTestClient(t, handler, nil)

	_, err := client.CreateTransaction(context.Background(), 1, core.Transaction{})
	if !IsRequestRejected(err) {
		t.Fatalf("expected request-rejected, got %v", err)
	}
	if err.Error() == "" {
		t.Fatal("structured detail must still produce a non-empty message")
	}
}
