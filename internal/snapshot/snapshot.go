// Package snapshot encodes the whole job collection as one versioned JSON
// document, the unit persisted in the key-value slot.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"joblog/internal/core"
)

// Version is written into every envelope. Version 0 is the bare JSON array
// written by older app builds.
const Version = 1

// ErrDecode matches every *DecodeError through errors.Is.
var ErrDecode = errors.New("snapshot decode failed")

// DecodeError reports persisted bytes that do not form a valid collection.
type DecodeError struct {
	Index int // offending job, -1 for envelope errors
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode snapshot: %v", e.Err)
	}
	return fmt.Sprintf("decode snapshot: job %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

type envelope struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Jobs    []jobJSON `json:"jobs"`
}

type billingJSON struct {
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

type jobJSON struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	CompanyName   string       `json:"companyName,omitempty"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	Yards         string       `json:"yards"`
	Total         string       `json:"total"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus"`
	CheckNumber   *string      `json:"checkNumber,omitempty"`
	BillingInfo   *billingJSON `json:"billingInfo,omitempty"`
	Notes         string       `json:"notes"`
}

// Encode serializes jobs in their current order.
func Encode(jobs []core.JobRecord, savedAt time.Time) ([]byte, error) {
	env := envelope{
		Version: Version,
		SavedAt: savedAt.UTC(),
		Jobs:    make([]jobJSON, 0, len(jobs)),
	}
	for _, j := range jobs {
		env.Jobs = append(env.Jobs, toJSON(j))
	}
	return json.Marshal(env)
}

// Decode parses a snapshot and checks every record's invariants, including
// id uniqueness. Any failure is a *DecodeError and no partial result is
// returned.
func Decode(data []byte) ([]core.JobRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &DecodeError{Index: -1, Err: errors.New("empty document")}
	}

	var raw []jobJSON
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, &DecodeError{Index: -1, Err: err}
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, &DecodeError{Index: -1, Err: err}
		}
		if env.Version != Version {
			return nil, &DecodeError{Index: -1, Err: fmt.Errorf("unsupported version %d", env.Version)}
		}
		raw = env.Jobs
	}

	jobs := make([]core.JobRecord, 0, len(raw))
	ids := make(map[string]struct{}, len(raw))
	for i, r := range raw {
		j, err := fromJSON(r)
		if err != nil {
			return nil, &DecodeError{Index: i, Err: err}
		}
		if err := j.Validate(); err != nil {
			return nil, &DecodeError{Index: i, Err: err}
		}
		if _, dup := ids[j.ID]; dup {
			return nil, &DecodeError{Index: i, Err: fmt.Errorf("duplicate id %q", j.ID)}
		}
		ids[j.ID] = struct{}{}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func toJSON(j core.JobRecord) jobJSON {
	out := jobJSON{
		ID:            j.ID,
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
		out.CheckNumber = &n
	}
	if b, ok := j.Payment.Billing(); ok {
		out.BillingInfo = &billingJSON{
			CompanyName: b.CompanyName,
			Address:     b.Address,
			Phone:       b.Phone,
			Email:       b.Email,
		}
	}
	return out
}

func fromJSON(r jobJSON) (core.JobRecord, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.JobRecord{}, err
	}
	yards, err := decimal.NewFromString(r.Yards)
	if err != nil {
		return core.JobRecord{}, fmt.Errorf("yards: %w", core.ErrInvalidAmount)
	}
	cents, err := core.ParseDecimalToCents(r.Total)
	if err != nil {
		return core.JobRecord{}, fmt.Errorf("total: %w", err)
	}
	method, err := core.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return core.JobRecord{}, err
	}
	status, err := core.ParsePaymentStatus(r.PaymentStatus)
	if err != nil {
		return core.JobRecord{}, err
	}

	var payment core.Payment
	switch method {
	case core.Check:
		if r.BillingInfo != nil {
			return core.JobRecord{}, core.ErrPayloadMethod
		}
		n := ""
		if r.CheckNumber != nil {
			n = *r.CheckNumber
		}
		payment = core.CheckPayment(n)
	case core.Charge:
		if r.CheckNumber != nil {
			return core.JobRecord{}, core.ErrPayloadMethod
		}
		var b core.BillingInfo
		if r.BillingInfo != nil {
			b = core.BillingInfo{
				CompanyName: r.BillingInfo.CompanyName,
				Address:     r.BillingInfo.Address,
				Phone:       r.BillingInfo.Phone,
				Email:       r.BillingInfo.Email,
			}
		}
		payment = core.ChargePayment(b)
	default:
		if r.CheckNumber != nil || r.BillingInfo != nil {
			return core.JobRecord{}, core.ErrPayloadMethod
		}
		payment = core.NewPayment(method)
	}

	return core.JobRecord{
		ID:          r.ID,
		Date:        date,
		CompanyName: r.CompanyName,
		Address:     r.Address,
		City:        r.City,
		Yards:       yards,
		Total:       core.Money{Cents: cents},
		Payment:     payment,
		Status:      status,
		Notes:       r.Notes,
	}, nil
}
