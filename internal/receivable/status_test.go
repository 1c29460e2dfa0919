package receivable

import (
	"testing"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		paid, due int64
		want      string
	}{
		{0, 1000, db.ReceivableStatusUnpaid},
		{1, 1000, db.ReceivableStatusPartiallyPaid},
		{999, 1000, db.ReceivableStatusPartiallyPaid},
		{1000, 1000, db.ReceivableStatusPaid},
	}
	for _, tc := range cases {
		if got := NextStatus(tc.paid, tc.due); got != tc.want {
			t.Fatalf("NextStatus(%d, %d) = %s, want %s", tc.paid, tc.due, got, tc.want)
		}
	}
}

func TestValidatePaymentRejectsNonPositive(t *testing.T) {
	if err := ValidatePayment(0, 0, 1000); err == nil {
		t.Fatal("expected error for zero payment")
	}
	if err := ValidatePayment(-100, 0, 1000); err == nil {
		t.Fatal("expected error for negative payment")
	}
}

func TestValidatePaymentRejectsOverpayment(t *testing.T) {
	err := ValidatePayment(600, 500, 1000)
	if err == nil {
		t.Fatal("expected overpayment error")
	}
	app, ok := common.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if app.Code != common.CodeValidation {
		t.Fatalf("code = %s, want VALIDATION", app.Code)
	}
	details, ok := app.Details.(map[string]int64)
	if !ok {
		t.Fatalf("details = %T, want map[string]int64", app.Details)
	}
	if details["maxAcceptable"] != 500 {
		t.Fatalf("maxAcceptable = %d, want 500", details["maxAcceptable"])
	}
}

func TestValidatePaymentRejectsSettledReceivable(t *testing.T) {
	if err := ValidatePayment(1, 1000, 1000); err == nil {
		t.Fatal("expected error for settled receivable")
	}
}

func TestValidatePaymentExactRemainderAccepted(t *testing.T) {
	if err := ValidatePayment(500, 500, 1000); err != nil {
		t.Fatalf("exact remainder rejected: %v", err)
	}
}
