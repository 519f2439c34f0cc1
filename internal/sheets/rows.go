package sheets

import (
	"fmt"
	"strings"

	"joblog/internal/core"
)

// JobHeader is the first row of the mirrored job table.
var JobHeader = []any{
	"Date", "Company", "Address", "City", "Yards", "Total",
	"Payment Method", "Check #", "Billing", "Status", "Notes", "ID",
}

// WeeklyHeader is the first row of the weekly report table.
var WeeklyHeader = []any{"Week Ending", "Total Jobs", "Total Earned", "Unpaid Jobs"}

// JobRows renders records as sheet rows, header first.
func JobRows(jobs []core.JobRecord) [][]any {
	rows := make([][]any, 0, len(jobs)+1)
	rows = append(rows, JobHeader)
	for _, j := range jobs {
		check, _ := j.Payment.CheckNumber()
		billing := ""
		if b, ok := j.Payment.Billing(); ok {
			billing = formatBilling(b)
		}
		rows = append(rows, []any{
			j.Date.String(),
			j.CompanyName,
			j.Address,
			j.City,
			j.Yards.String(),
			j.Total.Decimal().StringFixed(2),
			string(j.Payment.Method()),
			check,
			billing,
			string(j.Status),
			j.Notes,
			j.ID,
		})
	}
	return rows
}

// WeeklyRows renders a report as sheet rows: header, one row per week and a
// trailing month-to-date line.
func WeeklyRows(report core.WeeklyReport) [][]any {
	rows := make([][]any, 0, len(report.Weeks)+3)
	rows = append(rows, WeeklyHeader)
	for _, w := range report.Weeks {
		rows = append(rows, []any{
			w.WeekEnding.String(),
			w.TotalJobs,
			w.TotalEarned.Decimal().StringFixed(2),
			w.UnpaidJobs,
		})
	}
	rows = append(rows,
		[]any{},
		[]any{fmt.Sprintf("Month to date (%s)", report.AsOf.Format("January 2006")), "", report.MonthToDate.Decimal().StringFixed(2), ""},
	)
	return rows
}

func formatBilling(b core.BillingInfo) string {
	parts := make([]string, 0, 4)
	for _, v := range []string{b.CompanyName, b.Address, b.Phone, b.Email} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / ")
}
