package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"joblog/internal/core"
)

func TestJobRows(t *testing.T) {
	jobs := []core.JobRecord{
		{
			ID: "a", Date: core.NewDate(2025, 1, 4), Address: "1 Elm", City: "Springfield",
			Yards: decimal.RequireFromString("2.5"), Total: core.Money{Cents: 10050},
			Payment: core.CheckPayment("881"), Status: core.Unpaid,
		},
		{
			ID: "b", Date: core.NewDate(2025, 1, 5), CompanyName: "Oak HOA", Address: "9 Oak", City: "Ogdenville",
			Yards: decimal.RequireFromString("1"), Total: core.Money{Cents: 5000},
			Payment: core.ChargePayment(core.BillingInfo{CompanyName: "Oak HOA", Email: "ap@oak.test"}), Status: core.Paid,
		},
	}

	rows := JobRows(jobs)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || len(rows[0]) != len(rows[1]) {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][5] != "100.50" || rows[1][7] != "881" || rows[1][8] != "" {
		t.Fatalf("unexpected check row %v", rows[1])
	}
	if rows[2][7] != "" || rows[2][8] != "Oak HOA / ap@oak.test" || rows[2][9] != "Paid" {
		t.Fatalf("unexpected charge row %v", rows[2])
	}
}

func TestWeeklyRows(t *testing.T) {
	report := core.WeeklyReport{
		Weeks: []core.WeeklySummary{
			{WeekEnding: core.NewDate(2025, 1, 4), TotalJobs: 2, TotalEarned: core.Money{Cents: 20000}, UnpaidJobs: 2},
			{WeekEnding: core.NewDate(2025, 1, 11), TotalJobs: 1, TotalEarned: core.Money{Cents: 5000}},
		},
		MonthToDate: core.Money{Cents: 25000},
		AsOf:        core.DateOf(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)),
	}

	rows := WeeklyRows(report)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[1][0] != "2025-01-04" || rows[1][1] != 2 || rows[1][2] != "200.00" || rows[1][3] != 2 {
		t.Fatalf("unexpected first week %v", rows[1])
	}
	if rows[4][0] != "Month to date (January 2025)" || rows[4][2] != "250.00" {
		t.Fatalf("unexpected month line %v", rows[4])
	}
}
