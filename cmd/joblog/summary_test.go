package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblog/internal/core"
)

func TestPrintWeeklyReport(t *testing.T) {
	jobs := []core.JobRecord{
		{ID: "1", Date: core.NewDate(2025, 1, 2), Address: "a", City: "c", Yards: decimal.NewFromInt(1), Total: core.Money{Cents: 10000}, Payment: core.NewPayment(core.Cash), Status: core.Paid},
		{ID: "2", Date: core.NewDate(2025, 1, 6), Address: "a", City: "c", Yards: decimal.NewFromInt(1), Total: core.Money{Cents: 2550}, Payment: core.NewPayment(core.Cash), Status: core.Unpaid},
	}
	report := core.Summarize(jobs, core.Descending, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, printWeeklyReport(&buf, report))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "WEEK ENDING"))
	assert.Contains(t, lines[1], "2025-01-11")
	assert.Contains(t, lines[1], "$25.50")
	assert.Contains(t, lines[2], "2025-01-04")
	assert.Contains(t, lines[4], "Month to date (January 2025)")
	assert.Contains(t, lines[4], "$125.50")
}

func TestRootCommandWiring(t *testing.T) {
	root := rootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["worker"])
	assert.True(t, names["summary"])
}
