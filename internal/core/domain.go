package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Cash   PaymentMethod = "Cash"
	Check  PaymentMethod = "Check"
	Zelle  PaymentMethod = "Zelle"
	Charge PaymentMethod = "Charge"
	Square PaymentMethod = "Square"
)

const (
	Paid   PaymentStatus = "Paid"
	Unpaid PaymentStatus = "Unpaid"
)

// DateLayout is the wire and display layout for job dates.
const DateLayout = "2006-01-02"

type (
	PaymentMethod string
	PaymentStatus string

	// Date is a calendar day normalized to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// BillingInfo is the payload of a Charge payment. Every field is optional.
	BillingInfo struct {
		CompanyName string
		Address     string
		Phone       string
		Email       string
	}

	// Payment is a tagged union keyed by its method. The check number only
	// exists for Check and the billing info only for Charge; the fields are
	// unexported so no other combination can be built.
	Payment struct {
		method      PaymentMethod
		checkNumber string
		billing     BillingInfo
	}

	JobRecord struct {
		ID          string
		Date        Date
		CompanyName string
		Address     string
		City        string
		Yards       decimal.Decimal
		Total       Money
		Payment     Payment
		Status      PaymentStatus
		Notes       string
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrRequired       = errors.New("required field is empty")
	ErrUnknownMethod  = errors.New("unknown payment method")
	ErrUnknownStatus  = errors.New("unknown payment status")
	ErrPayloadMethod  = errors.New("payment payload does not match payment method")
)

// PaymentMethods lists the closed set of accepted methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Cash, Check, Zelle, Charge, Square}
}

// ParsePaymentMethod matches a method name case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	for _, m := range PaymentMethods() {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// ParsePaymentStatus matches a status case-insensitively. An empty value
// means the job has not been paid yet.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", strings.EqualFold(s, string(Unpaid)):
		return Unpaid, nil
	case strings.EqualFold(s, string(Paid)):
		return Paid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day of t, keeping its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	if m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of both amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Dollars returns the value as a float64 for display purposes.
// Use cents for calculations.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as "$12.34".
func (m Money) String() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := fmt.Sprintf("$%d.%02d", c/100, c%100)
	if neg {
		return "-" + s
	}
	return s
}

// Decimal returns the amount as a decimal number of dollars.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// NewPayment builds a payment without payload. Check and Charge payments get
// an empty check number or empty billing info respectively.
func NewPayment(method PaymentMethod) Payment {
	return Payment{method: method}
}

func CheckPayment(checkNumber string) Payment {
	return Payment{method: Check, checkNumber: checkNumber}
}

func ChargePayment(billing BillingInfo) Payment {
	return Payment{method: Charge, billing: billing}
}

func (p Payment) Method() PaymentMethod {
	return p.method
}

// CheckNumber reports the check number; ok is false unless the method is Check.
func (p Payment) CheckNumber() (string, bool) {
	return p.checkNumber, p.method == Check
}

// Billing reports the billing info; ok is false unless the method is Charge.
func (p Payment) Billing() (BillingInfo, bool) {
	return p.billing, p.method == Charge
}

func (p Payment) Validate() error {
	switch p.method {
	case Cash, Zelle, Square:
		if p.checkNumber != "" || !p.billing.IsEmpty() {
			return ErrPayloadMethod
		}
	case Check:
		if !p.billing.IsEmpty() {
			return ErrPayloadMethod
		}
	case Charge:
		if p.checkNumber != "" {
			return ErrPayloadMethod
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, p.method)
	}
	return nil
}

// IsEmpty returns true when no billing field is set.
func (b BillingInfo) IsEmpty() bool {
	return b == BillingInfo{}
}

// Validate checks the invariants of a stored record. Drafts are validated
// by Validator before they become records.
func (j JobRecord) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return errors.New("empty id")
	}
	if err := j.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(j.Address) == "" {
		return fmt.Errorf("address: %w", ErrRequired)
	}
	if strings.TrimSpace(j.City) == "" {
		return fmt.Errorf("city: %w", ErrRequired)
	}
	if j.Yards.IsNegative() {
		return fmt.Errorf("yards: %w", ErrNegativeAmount)
	}
	if err := j.Total.Validate(); err != nil {
		return fmt.Errorf("total: %w", err)
	}
	if err := j.Payment.Validate(); err != nil {
		return err
	}
	switch j.Status {
	case Paid, Unpaid:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, j.Status)
	}
	return nil
}
