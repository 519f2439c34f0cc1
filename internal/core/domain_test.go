package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validDraft() Draft {
	return Draft{
		Date:          "2025-01-01",
		CompanyName:   "Acme Landscaping",
		Address:       "12 Elm St",
		City:          "Springfield",
		Yards:         "3.5",
		Total:         "100",
		PaymentMethod: "Cash",
		PaymentStatus: "Unpaid",
		Notes:         "back gate",
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-04", "2025-01-04", true},
		{" 2025-01-04 ", "2025-01-04", true},
		{"2025-01-04T23:30:00-05:00", "2025-01-04", true},
		{"01/04/2025", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "$0.00",
		5:      "$0.05",
		12345:  "$123.45",
		-250:   "-$2.50",
		100000: "$1000.00",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestParsePaymentMethodAndStatus(t *testing.T) {
	if m, err := ParsePaymentMethod(" zelle "); err != nil || m != Zelle {
		t.Fatalf("expected Zelle, got %q (err=%v)", m, err)
	}
	if _, err := ParsePaymentMethod("Venmo"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
	if s, err := ParsePaymentStatus(""); err != nil || s != Unpaid {
		t.Fatalf("empty status should default to Unpaid, got %q (err=%v)", s, err)
	}
	if s, err := ParsePaymentStatus("PAID"); err != nil || s != Paid {
		t.Fatalf("expected Paid, got %q (err=%v)", s, err)
	}
	if _, err := ParsePaymentStatus("partial"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestPaymentPayloadAccessors(t *testing.T) {
	p := CheckPayment("1042")
	if n, ok := p.CheckNumber(); !ok || n != "1042" {
		t.Fatalf("expected check number 1042, got %q ok=%v", n, ok)
	}
	if _, ok := p.Billing(); ok {
		t.Fatalf("check payment must not expose billing info")
	}

	c := ChargePayment(BillingInfo{Email: "ap@acme.test"})
	if b, ok := c.Billing(); !ok || b.Email != "ap@acme.test" {
		t.Fatalf("unexpected billing %+v ok=%v", b, ok)
	}
	if _, ok := c.CheckNumber(); ok {
		t.Fatalf("charge payment must not expose a check number")
	}

	if _, ok := NewPayment(Cash).CheckNumber(); ok {
		t.Fatalf("cash payment must not expose a check number")
	}
}

func TestPaymentValidate(t *testing.T) {
	good := []Payment{NewPayment(Cash), CheckPayment(""), CheckPayment("7"), ChargePayment(BillingInfo{}), NewPayment(Square)}
	for i, p := range good {
		if err := p.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}
	bads := []Payment{
		{},
		{method: "Venmo"},
		{method: Cash, checkNumber: "1"},
		{method: Zelle, billing: BillingInfo{Phone: "555"}},
		{method: Check, billing: BillingInfo{Phone: "555"}},
		{method: Charge, checkNumber: "1"},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestJobRecordValidate(t *testing.T) {
	good := JobRecord{
		ID:      "job-1",
		Date:    NewDate(2025, 1, 1),
		Address: "12 Elm St",
		City:    "Springfield",
		Yards:   decimal.RequireFromString("2"),
		Total:   Money{Cents: 0},
		Payment: NewPayment(Cash),
		Status:  Paid,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mutate := []func(*JobRecord){
		func(j *JobRecord) { j.ID = "" },
		func(j *JobRecord) { j.Date = Date{} },
		func(j *JobRecord) { j.Address = " " },
		func(j *JobRecord) { j.City = "" },
		func(j *JobRecord) { j.Yards = decimal.RequireFromString("-1") },
		func(j *JobRecord) { j.Total = Money{Cents: -1} },
		func(j *JobRecord) { j.Payment = Payment{method: Cash, checkNumber: "9"} },
		func(j *JobRecord) { j.Status = "Maybe" },
	}
	for i, m := range mutate {
		j := good
		m(&j)
		if err := j.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
