package core

import (
	"encoding/json"
	"testing"
)

func TestBudgetAlertDecode(t *testing.T) {
	body := `{
		"category": "food",
		"budget_limit": 600.0,
		"current_spending": 550.0,
		"percentage_used": 91.7,
		"remaining": 50.0,
		"alert_threshold": 0.8,
		"is_over_budget": false,
		"is_near_limit": true,
		"days_remaining_in_month": 12
	}`
	var alert BudgetAlert
	if err := json.Unmarshal([]byte(body), &alert); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if alert.Remaining.Cents != 5000 {
		t.Errorf("Remaining = %d cents, want 5000", alert.Remaining.Cents)
	}
	if alert.DaysRemaining != 12 {
		t.Errorf("DaysRemaining = %d, want 12", alert.DaysRemaining)
	}
	if alert.AlertThreshold != 0.8 {
		t.Errorf("AlertThreshold = %v, want 0.8", alert.AlertThreshold)
	}
	if !alert.IsNearLimit || alert.IsOverBudget {
		t.Errorf("flags = near:%v over:%v", alert.IsNearLimit, alert.IsOverBudget)
	}
}

func TestBudgetAlertLevel(t *testing.T) {
	tests := []struct {
		name  string
		alert BudgetAlert
		want  string
	}{
		{"under threshold", BudgetAlert{}, "ok"},
		{"near limit", BudgetAlert{IsNearLimit: true}, "warning"},
		{"over budget", BudgetAlert{IsOverBudget: true, IsNearLimit: true}, "critical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.Level(); got != tt.want {
				t.Errorf("Level() = %q, want %q", got, tt.want)
			}
		})
	}
}
