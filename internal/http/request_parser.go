// Package http exposes the job store over a small JSON API.
//
// This file implements utilities for parsing request bodies and query
// parameters into domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"joblog/internal/core"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errors.New("request body too large")
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetNested reads key from a JSON object field, e.g. billingInfo.email.
// Form bodies carry the same value flattened as <object><Key>.
func (p *RequestBodyParser) GetNested(object, key string) string {
	if p.jsonData != nil {
		obj, ok := p.jsonData[object].(map[string]interface{})
		if !ok {
			return ""
		}
		return sanitizeInput(stringValue(obj[key]))
	}
	return p.Get(object + strings.ToUpper(key[:1]) + key[1:])
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Draft collects the job form fields.
func (p *RequestBodyParser) Draft() core.Draft {
	return core.Draft{
		Date:          p.Get("date"),
		CompanyName:   p.Get("companyName"),
		Address:       p.Get("address"),
		City:          p.Get("city"),
		Yards:         p.Get("yards"),
		Total:         p.Get("total"),
		PaymentMethod: p.Get("paymentMethod"),
		PaymentStatus: p.Get("paymentStatus"),
		CheckNumber:   p.Get("checkNumber"),
		Billing: core.BillingInfo{
			CompanyName: p.GetNested("billingInfo", "companyName"),
			Address:     p.GetNested("billingInfo", "address"),
			Phone:       p.GetNested("billingInfo", "phone"),
			Email:       p.GetNested("billingInfo", "email"),
		},
		Notes: p.Get("notes"),
	}
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ParseAsOf reads the "now" query parameter as a calendar day, falling back
// to the server clock.
func ParseAsOf(query url.Values, fallback time.Time) (time.Time, error) {
	v := strings.TrimSpace(query.Get("now"))
	if v == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("now: %w", err)
	}
	return d.Time, nil
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from the query, defaulting to
// the month of asOf.
func ParseMonthParams(query url.Values, asOf time.Time) (MonthParams, error) {
	params := MonthParams{
		Year:  asOf.Year(),
		Month: int(asOf.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	return params, nil
}

// listOrder is how GET /jobs orders its result.
type listOrder string

const insertionOrder listOrder = "insertion"

func parseListOrder(s string) (listOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(insertionOrder) {
		return insertionOrder, nil
	}
	o, err := core.ParseSortOrder(s)
	if err != nil {
		return "", err
	}
	return listOrder(o), nil
}
