package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortOrder orders week buckets by their week-ending date.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// WeeklySummary aggregates the jobs of one Sunday-Saturday week.
type WeeklySummary struct {
	WeekEnding  Date
	TotalJobs   int
	TotalEarned Money
	UnpaidJobs  int
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year        int
	Month       int // 1-12
	Total       Money
	TotalJobs   int
	UnpaidJobs  int
	UnpaidTotal Money
}

// WeeklyReport is what the summary screen shows.
type WeeklyReport struct {
	Weeks       []WeeklySummary
	MonthToDate Money
	Order       SortOrder
	AsOf        Date
}

// WeekEnding returns the Saturday on or after d.
func WeekEnding(d Date) Date {
	offset := (int(time.Saturday) - int(d.Weekday()) + 7) % 7
	return d.AddDays(offset)
}

// GroupByWeek partitions records by week-ending date. Every record lands in
// exactly one bucket; buckets are sorted by WeekEnding in the given order.
func GroupByWeek(records []JobRecord, order SortOrder) []WeeklySummary {
	buckets := make(map[string]*WeeklySummary)
	for _, r := range records {
		end := WeekEnding(DateOf(r.Date.Time))
		b, ok := buckets[end.String()]
		if !ok {
			b = &WeeklySummary{WeekEnding: end}
			buckets[end.String()] = b
		}
		b.TotalJobs++
		b.TotalEarned = b.TotalEarned.Add(r.Total)
		if r.Status == Unpaid {
			b.UnpaidJobs++
		}
	}

	out := make([]WeeklySummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == Descending {
			return out[i].WeekEnding.After(out[j].WeekEnding.Time)
		}
		return out[i].WeekEnding.Before(out[j].WeekEnding.Time)
	})
	return out
}

// MonthlyOverview sums the records dated in the given year and month.
func MonthlyOverview(records []JobRecord, year, month int) MonthOverview {
	ov := MonthOverview{Year: year, Month: month}
	for _, r := range records {
		if r.Date.Year() != year || int(r.Date.Month()) != month {
			continue
		}
		ov.TotalJobs++
		ov.Total = ov.Total.Add(r.Total)
		if r.Status == Unpaid {
			ov.UnpaidJobs++
			ov.UnpaidTotal = ov.UnpaidTotal.Add(r.Total)
		}
	}
	return ov
}

// MonthlyTotal sums the totals of records in the calendar month of now.
func MonthlyTotal(records []JobRecord, now time.Time) Money {
	return MonthlyOverview(records, now.Year(), int(now.Month())).Total
}

// Summarize builds the weekly report view-model. now is supplied by the
// caller so the result does not depend on the system clock.
func Summarize(records []JobRecord, order SortOrder, now time.Time) WeeklyReport {
	if order == "" {
		order = Ascending
	}
	return WeeklyReport{
		Weeks:       GroupByWeek(records, order),
		MonthToDate: MonthlyTotal(records, now),
		Order:       order,
		AsOf:        DateOf(now),
	}
}

// SortByDate returns a chronological copy of records. Records on the same
// day keep their relative order.
func SortByDate(records []JobRecord, order SortOrder) []JobRecord {
	out := append([]JobRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}
