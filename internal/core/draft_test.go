package core

import (
	"errors"
	"testing"
)

func TestValidatorAcceptsValidDraft(t *testing.T) {
	rec, err := DefaultValidator().Validate(validDraft())
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if rec.ID != "" {
		t.Fatalf("validator must not assign ids, got %q", rec.ID)
	}
	if rec.Date.String() != "2025-01-01" || rec.Address != "12 Elm St" || rec.City != "Springfield" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Yards.String() != "3.5" || rec.Total.Cents != 10000 {
		t.Fatalf("unexpected numbers yards=%s total=%d", rec.Yards, rec.Total.Cents)
	}
	if rec.Payment.Method() != Cash || rec.Status != Unpaid || rec.Notes != "back gate" {
		t.Fatalf("unexpected payment/status/notes %+v", rec)
	}
}

func TestValidatorFirstFailingField(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Draft)
		field string
	}{
		{"missing date", func(d *Draft) { d.Date = "" }, "date"},
		{"bad date", func(d *Draft) { d.Date = "tomorrow" }, "date"},
		{"missing address", func(d *Draft) { d.Address = "  " }, "address"},
		{"missing city", func(d *Draft) { d.City = "" }, "city"},
		{"missing yards", func(d *Draft) { d.Yards = "" }, "yards"},
		{"garbage yards", func(d *Draft) { d.Yards = "lots" }, "yards"},
		{"missing total", func(d *Draft) { d.Total = "" }, "total"},
		{"missing method", func(d *Draft) { d.PaymentMethod = "" }, "paymentMethod"},
		{"unknown method", func(d *Draft) { d.PaymentMethod = "Venmo" }, "paymentMethod"},
		{"unknown status", func(d *Draft) { d.PaymentStatus = "Later" }, "paymentStatus"},
		{"address reported before total", func(d *Draft) { d.Address = ""; d.Total = "" }, "address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.edit(&d)
			_, err := DefaultValidator().Validate(d)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q (%v)", tc.field, verr.Field, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func TestValidatorOptionalFields(t *testing.T) {
	d := validDraft()
	d.CompanyName = ""
	d.Notes = ""
	if _, err := DefaultValidator().Validate(d); err != nil {
		t.Fatalf("companyName and notes are optional, got %v", err)
	}
}

func TestValidatorNumericPolicies(t *testing.T) {
	d := validDraft()
	d.Total = "$1,250.00"
	d.Yards = "4 yd"

	rec, err := Validator{Numeric: NumericStrip}.Validate(d)
	if err != nil {
		t.Fatalf("strip policy: %v", err)
	}
	if rec.Total.Cents != 125000 || rec.Yards.String() != "4" {
		t.Fatalf("strip policy parsed total=%d yards=%s", rec.Total.Cents, rec.Yards)
	}

	_, err = Validator{Numeric: NumericReject}.Validate(d)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "yards" {
		t.Fatalf("reject policy should fail on yards first, got %v", err)
	}
}

func TestValidatorCheckNumberPolicy(t *testing.T) {
	d := validDraft()
	d.PaymentMethod = "Check"

	rec, err := Validator{CheckNumber: CheckNumberOptional}.Validate(d)
	if err != nil {
		t.Fatalf("optional policy: %v", err)
	}
	if n, ok := rec.Payment.CheckNumber(); !ok || n != "" {
		t.Fatalf("expected empty check number, got %q ok=%v", n, ok)
	}

	_, err = Validator{CheckNumber: CheckNumberRequired}.Validate(d)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "checkNumber" || !errors.Is(err, ErrRequired) {
		t.Fatalf("required policy should reject missing check number, got %v", err)
	}

	d.CheckNumber = " 2211 "
	rec, err = Validator{CheckNumber: CheckNumberRequired}.Validate(d)
	if err != nil {
		t.Fatalf("required policy with number: %v", err)
	}
	if n, _ := rec.Payment.CheckNumber(); n != "2211" {
		t.Fatalf("expected trimmed check number, got %q", n)
	}
}

func TestValidatorDropsPayloadOfOtherMethods(t *testing.T) {
	d := validDraft()
	d.PaymentMethod = "Zelle"
	d.CheckNumber = "100"
	d.Billing = BillingInfo{CompanyName: "Acme", Phone: "555-0100"}

	rec, err := DefaultValidator().Validate(d)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if _, ok := rec.Payment.CheckNumber(); ok {
		t.Fatalf("zelle payment kept a check number")
	}
	if _, ok := rec.Payment.Billing(); ok {
		t.Fatalf("zelle payment kept billing info")
	}
	if err := rec.Payment.Validate(); err != nil {
		t.Fatalf("payment should be consistent, got %v", err)
	}

	d.PaymentMethod = "Charge"
	rec, err = DefaultValidator().Validate(d)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	b, ok := rec.Payment.Billing()
	if !ok || b.CompanyName != "Acme" || b.Phone != "555-0100" {
		t.Fatalf("charge payment lost billing info: %+v", b)
	}
	if err := rec.Payment.Validate(); err != nil {
		t.Fatalf("charge payment should drop the check number, got %v", err)
	}
}

func TestDraftFromRoundTrip(t *testing.T) {
	d := validDraft()
	d.PaymentMethod = "Charge"
	d.Billing = BillingInfo{CompanyName: "Acme", Email: "ap@acme.test"}
	d.Total = "99.5"

	v := DefaultValidator()
	rec, err := v.Validate(d)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	again, err := v.Validate(DraftFrom(rec))
	if err != nil {
		t.Fatalf("validate round trip: %v", err)
	}
	if again.Total != rec.Total || !again.Yards.Equal(rec.Yards) || again.Payment != rec.Payment || again.Date != rec.Date {
		t.Fatalf("round trip changed record: %+v vs %+v", again, rec)
	}
	if DraftFrom(rec).Total != "99.50" {
		t.Fatalf("expected total rendered with two decimals, got %q", DraftFrom(rec).Total)
	}
}
