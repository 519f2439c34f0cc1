package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError names the first draft field that failed.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// CheckNumberPolicy says whether a Check payment needs a check number.
type CheckNumberPolicy string

const (
	CheckNumberOptional CheckNumberPolicy = "optional"
	CheckNumberRequired CheckNumberPolicy = "required"
)

func ParseCheckNumberPolicy(s string) (CheckNumberPolicy, error) {
	switch CheckNumberPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CheckNumberOptional, "":
		return CheckNumberOptional, nil
	case CheckNumberRequired:
		return CheckNumberRequired, nil
	}
	return "", fmt.Errorf("unknown check number policy %q", s)
}

// Draft is the user-entered, not yet validated content of a job form.
type Draft struct {
	Date          string
	CompanyName   string
	Address       string
	City          string
	Yards         string
	Total         string
	PaymentMethod string
	PaymentStatus string
	CheckNumber   string
	Billing       BillingInfo
	Notes         string
}

// DraftFrom renders a record back into form values, e.g. to prefill an edit form.
func DraftFrom(j JobRecord) Draft {
	d := Draft{
		Date:          j.Date.String(),
		CompanyName:   j.CompanyName,
		Address:       j.Address,
		City:          j.City,
		Yards:         j.Yards.String(),
		Total:         j.Total.Decimal().StringFixed(2),
		PaymentMethod: string(j.Payment.Method()),
		PaymentStatus: string(j.Status),
		Notes:         j.Notes,
	}
	if n, ok := j.Payment.CheckNumber(); ok {
		d.CheckNumber = n
	}
	if b, ok := j.Payment.Billing(); ok {
		d.Billing = b
	}
	return d
}

// Validator turns drafts into records under configurable policies.
type Validator struct {
	Numeric     NumericPolicy
	CheckNumber CheckNumberPolicy
}

// DefaultValidator strips stray characters from numbers and leaves the
// check number optional.
func DefaultValidator() Validator {
	return Validator{Numeric: NumericStrip, CheckNumber: CheckNumberOptional}
}

// Validate checks the whole draft in one pass and returns a record without
// an ID. Fields are checked in form order and the first failure is
// returned as a *ValidationError. Payload fields that do not belong to the
// selected payment method are dropped.
func (v Validator) Validate(d Draft) (JobRecord, error) {
	numeric := v.Numeric
	if numeric == "" {
		numeric = NumericStrip
	}

	if strings.TrimSpace(d.Date) == "" {
		return JobRecord{}, invalid("date", ErrRequired)
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return JobRecord{}, invalid("date", err)
	}

	address := strings.TrimSpace(d.Address)
	if address == "" {
		return JobRecord{}, invalid("address", ErrRequired)
	}
	city := strings.TrimSpace(d.City)
	if city == "" {
		return JobRecord{}, invalid("city", ErrRequired)
	}

	yards, err := ParseYards(d.Yards, numeric)
	if err != nil {
		return JobRecord{}, invalid("yards", err)
	}
	total, err := ParseMoney(d.Total, numeric)
	if err != nil {
		return JobRecord{}, invalid("total", err)
	}

	if strings.TrimSpace(d.PaymentMethod) == "" {
		return JobRecord{}, invalid("paymentMethod", ErrRequired)
	}
	method, err := ParsePaymentMethod(d.PaymentMethod)
	if err != nil {
		return JobRecord{}, invalid("paymentMethod", err)
	}
	status, err := ParsePaymentStatus(d.PaymentStatus)
	if err != nil {
		return JobRecord{}, invalid("paymentStatus", err)
	}

	var payment Payment
	switch method {
	case Check:
		n := strings.TrimSpace(d.CheckNumber)
		if n == "" && v.CheckNumber == CheckNumberRequired {
			return JobRecord{}, invalid("checkNumber", ErrRequired)
		}
		payment = CheckPayment(n)
	case Charge:
		payment = ChargePayment(BillingInfo{
			CompanyName: strings.TrimSpace(d.Billing.CompanyName),
			Address:     strings.TrimSpace(d.Billing.Address),
			Phone:       strings.TrimSpace(d.Billing.Phone),
			Email:       strings.TrimSpace(d.Billing.Email),
		})
	default:
		payment = NewPayment(method)
	}

	return JobRecord{
		Date:        date,
		CompanyName: strings.TrimSpace(d.CompanyName),
		Address:     address,
		City:        city,
		Yards:       yards,
		Total:       total,
		Payment:     payment,
		Status:      status,
		Notes:       strings.TrimSpace(d.Notes),
	}, nil
}
