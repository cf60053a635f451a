// Package aging buckets outstanding invoices by party and elapsed days.
package aging

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

// DateLayout is the calendar date format used by the ERP.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Invoice is an outstanding invoice for a single party.
type Invoice struct {
	Name              string
	PostingDate       time.Time
	Party             string
	PartyName         string
	OutstandingAmount decimal.Decimal
	Currency          string
}

// Entry summarises the outstanding balance of one party.
type Entry struct {
	PartyType        string          `json:"party_type"`
	Party            string          `json:"party"`
	PartyName        string          `json:"party_name"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Range1           decimal.Decimal `json:"range1"`
	Range2           decimal.Decimal `json:"range2"`
	Range3           decimal.Decimal `json:"range3"`
	Range4           decimal.Decimal `json:"range4"`
	Currency         string          `json:"currency"`
}

// Bucket identifies one of the four age ranges.
type Bucket int

const (
	Bucket0To30 Bucket = iota + 1
	Bucket31To60
	Bucket61To90
	BucketOver90
)

// BucketFor classifies an age in days.
func BucketFor(days int) Bucket {
	switch {
	case days <= 30:
		return Bucket0To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// AgeDays is the whole number of days between two calendar dates. Posting
// dates after the report date are aged by their absolute distance.
func AgeDays(reportDate, postingDate time.Time) int {
	diff := truncate(reportDate).Sub(truncate(postingDate))
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}

// ParseReportDate parses a YYYY-MM-DD date. An empty raw value means today's
// UTC calendar date, the same day the warmup job and cache keys use.
func ParseReportDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return truncate(now.UTC()), nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: report_date %q is not a valid date", httpx.ErrInvalidArgument, raw)
	}
	return d, nil
}

// Aggregate groups invoices by party and accumulates each amount into exactly
// one bucket. Entries are returned in the order their party was first seen.
func Aggregate(partyType string, invoices []Invoice, reportDate time.Time) []Entry {
	index := make(map[string]int)
	entries := make([]Entry, 0)
	for _, inv := range invoices {
		i, ok := index[inv.Party]
		if !ok {
			i = len(entries)
			index[inv.Party] = i
			entries = append(entries, Entry{
				PartyType:        partyType,
				Party:            inv.Party,
				PartyName:        inv.PartyName,
				Currency:         inv.Currency,
				TotalOutstanding: decimal.Zero,
				Range1:           decimal.Zero,
				Range2:           decimal.Zero,
				Range3:           decimal.Zero,
				Range4:           decimal.Zero,
			})
		}
		e := &entries[i]
		amount := inv.OutstandingAmount
		switch BucketFor(AgeDays(reportDate, inv.PostingDate)) {
		case Bucket0To30:
			e.Range1 = e.Range1.Add(amount)
		case Bucket31To60:
			e.Range2 = e.Range2.Add(amount)
		case Bucket61To90:
			e.Range3 = e.Range3.Add(amount)
		default:
			e.Range4 = e.Range4.Add(amount)
		}
		e.TotalOutstanding = e.TotalOutstanding.Add(amount)
	}
	return entries
}

// truncate drops the time of day while keeping the calendar date.
func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
