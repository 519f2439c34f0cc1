package http

import (
	"time"

	"joblog/internal/core"
	"joblog/internal/services"
)

type billingView struct {
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

type jobView struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	WeekEnding    string       `json:"weekEnding"`
	CompanyName   string       `json:"companyName,omitempty"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	Yards         string       `json:"yards"`
	Total         string       `json:"total"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus"`
	CheckNumber   *string      `json:"checkNumber,omitempty"`
	BillingInfo   *billingView `json:"billingInfo,omitempty"`
	Notes         string       `json:"notes"`
}

func newJobView(j core.JobRecord) jobView {
	v := jobView{
		ID:            j.ID,
		Date:          j.Date.String(),
		WeekEnding:    core.WeekEnding(j.Date).String(),
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
		v.CheckNumber = &n
	}
	if b, ok := j.Payment.Billing(); ok {
		v.BillingInfo = &billingView{
			CompanyName: b.CompanyName,
			Address:     b.Address,
			Phone:       b.Phone,
			Email:       b.Email,
		}
	}
	return v
}

type jobListView struct {
	Revision uint64    `json:"revision"`
	Order    string    `json:"order"`
	Jobs     []jobView `json:"jobs"`
}

type jobResultView struct {
	Revision uint64  `json:"revision"`
	Job      jobView `json:"job"`
}

type weekView struct {
	WeekEnding  string `json:"weekEnding"`
	TotalJobs   int    `json:"totalJobs"`
	TotalEarned string `json:"totalEarned"`
	UnpaidJobs  int    `json:"unpaidJobs"`
}

type weeklyReportView struct {
	Revision    uint64     `json:"revision"`
	Order       string     `json:"order"`
	AsOf        string     `json:"asOf"`
	MonthToDate string     `json:"monthToDate"`
	Weeks       []weekView `json:"weeks"`
}

func newWeeklyReportView(rev uint64, r core.WeeklyReport) weeklyReportView {
	v := weeklyReportView{
		Revision:    rev,
		Order:       string(r.Order),
		AsOf:        r.AsOf.String(),
		MonthToDate: r.MonthToDate.Decimal().StringFixed(2),
		Weeks:       make([]weekView, 0, len(r.Weeks)),
	}
	for _, w := range r.Weeks {
		v.Weeks = append(v.Weeks, weekView{
			WeekEnding:  w.WeekEnding.String(),
			TotalJobs:   w.TotalJobs,
			TotalEarned: w.TotalEarned.Decimal().StringFixed(2),
			UnpaidJobs:  w.UnpaidJobs,
		})
	}
	return v
}

type monthView struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Total       string `json:"total"`
	TotalJobs   int    `json:"totalJobs"`
	UnpaidJobs  int    `json:"unpaidJobs"`
	UnpaidTotal string `json:"unpaidTotal"`
}

func newMonthView(ov core.MonthOverview) monthView {
	return monthView{
		Year:        ov.Year,
		Month:       ov.Month,
		Total:       ov.Total.Decimal().StringFixed(2),
		TotalJobs:   ov.TotalJobs,
		UnpaidJobs:  ov.UnpaidJobs,
		UnpaidTotal: ov.UnpaidTotal.Decimal().StringFixed(2),
	}
}

type statusView struct {
	Revision        uint64     `json:"revision"`
	Jobs            int        `json:"jobs"`
	Pending         int        `json:"pending"`
	LastPersisted   uint64     `json:"lastPersisted"`
	LastPersistedAt *time.Time `json:"lastPersistedAt,omitempty"`
	Durable         bool       `json:"durable"`
	LastError       string     `json:"lastError,omitempty"`
	LoadError       string     `json:"loadError,omitempty"`
	RateLimitHits   int64      `json:"rateLimitHits"`
}

func newStatusView(st services.StoreStatus) statusView {
	v := statusView{
		Revision:      st.Revision,
		Jobs:          st.Jobs,
		Pending:       st.Pending,
		LastPersisted: st.LastPersisted,
		Durable:       st.Durable(),
	}
	if !st.LastPersistedAt.IsZero() {
		at := st.LastPersistedAt.UTC()
		v.LastPersistedAt = &at
	}
	if st.LastError != nil {
		v.LastError = st.LastError.Error()
	}
	if st.LoadError != nil {
		v.LoadError = st.LoadError.Error()
	}
	return v
}
