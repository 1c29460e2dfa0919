package settlement

import "testing"

func TestDecidePaidWithChange(t *testing.T) {
	d := Decide(40750, 50000)
	if d.Outcome != OutcomePaid {
		t.Fatalf("outcome = %s, want PAID", d.Outcome)
	}
	if d.Change != 9250 {
		t.Fatalf("change = %d, want 9250", d.Change)
	}
	if d.Owed != 0 {
		t.Fatalf("owed = %d, want 0", d.Owed)
	}
}

func TestDecideExactTenderIsPaid(t *testing.T) {
	d := Decide(40750, 40750)
	if d.Outcome != OutcomePaid {
		t.Fatalf("outcome = %s, want PAID", d.Outcome)
	}
	if d.Change != 0 {
		t.Fatalf("change = %d, want 0", d.Change)
	}
}

func TestDecideUnderTenderIsReceivable(t *testing.T) {
	d := Decide(40750, 40749)
	if d.Outcome != OutcomeReceivable {
		t.Fatalf("outcome = %s, want RECEIVABLE", d.Outcome)
	}
	if d.Change != 0 {
		t.Fatalf("change = %d, want 0", d.Change)
	}
	if d.Owed != 1 {
		t.Fatalf("owed = %d, want 1", d.Owed)
	}
}

func TestDecideZeroTender(t *testing.T) {
	d := Decide(1000, 0)
	if d.Outcome != OutcomeReceivable {
		t.Fatalf("outcome = %s, want RECEIVABLE", d.Outcome)
	}
	if d.Owed != 1000 {
		t.Fatalf("owed = %d, want 1000", d.Owed)
	}
}

func TestDecideZeroTotalIsPaid(t *testing.T) {
	d := Decide(0, 0)
	if d.Outcome != OutcomePaid {
		t.Fatalf("outcome = %s, want PAID", d.Outcome)
	}
	if d.Change != 0 {
		t.Fatalf("change = %d, want 0", d.Change)
	}
}
