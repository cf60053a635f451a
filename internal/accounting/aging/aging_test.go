package aging

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return v
}

func TestAggregateScenarioTwoBuckets(t *testing.T) {
	report := date(t, "2024-03-31")
	invoices := []Invoice{
		{Name: "SINV-1", Party: "C1", PartyName: "Customer One", Currency: "USD", OutstandingAmount: d("100"), PostingDate: report.AddDate(0, 0, -10)},
		{Name: "SINV-2", Party: "C1", PartyName: "Customer One", Currency: "USD", OutstandingAmount: d("50"), PostingDate: report.AddDate(0, 0, -45)},
	}

	entries := Aggregate("Customer", invoices, report)
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, "Customer", e.PartyType)
	require.Equal(t, "C1", e.Party)
	require.True(t, e.Range1.Equal(d("100")))
	require.True(t, e.Range2.Equal(d("50")))
	require.True(t, e.Range3.IsZero())
	require.True(t, e.Range4.IsZero())
	require.True(t, e.TotalOutstanding.Equal(d("150")))
}

func TestBucketBoundaries(t *testing.T) {
	cases := map[int]Bucket{
		0:   Bucket0To30,
		30:  Bucket0To30,
		31:  Bucket31To60,
		60:  Bucket31To60,
		61:  Bucket61To90,
		90:  Bucket61To90,
		91:  BucketOver90,
		400: BucketOver90,
	}
	for days, want := range cases {
		require.Equal(t, want, BucketFor(days), "days=%d", days)
	}
}

func TestAgeDaysIgnoresTimeOfDayAndUsesAbsoluteDistance(t *testing.T) {
	report := time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)
	posted := time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC)
	require.Equal(t, 30, AgeDays(report, posted))

	future := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 20, AgeDays(report, future))
}

func TestAggregateGroupsCaseSensitivelyAndKeepsFirstSighting(t *testing.T) {
	report := date(t, "2024-06-30")
	invoices := []Invoice{
		{Party: "acme", PartyName: "Acme lower", Currency: "USD", OutstandingAmount: d("10"), PostingDate: report},
		{Party: "ACME", PartyName: "Acme upper", Currency: "EUR", OutstandingAmount: d("20"), PostingDate: report.AddDate(0, 0, -70)},
		{Party: "acme", PartyName: "Renamed", Currency: "EUR", OutstandingAmount: d("5"), PostingDate: report.AddDate(0, 0, -200)},
	}

	entries := Aggregate("Customer", invoices, report)
	require.Len(t, entries, 2)
	require.Equal(t, "acme", entries[0].Party)
	require.Equal(t, "Acme lower", entries[0].PartyName)
	require.Equal(t, "USD", entries[0].Currency)
	require.True(t, entries[0].Range1.Equal(d("10")))
	require.True(t, entries[0].Range4.Equal(d("5")))
	require.Equal(t, "ACME", entries[1].Party)
	require.True(t, entries[1].Range3.Equal(d("20")))
}

func TestAggregateTotalsEqualBucketSum(t *testing.T) {
	report := date(t, "2024-12-31")
	var invoices []Invoice
	parties := []string{"P1", "P2", "P3"}
	for i := 0; i < 60; i++ {
		invoices = append(invoices, Invoice{
			Party:             parties[i%len(parties)],
			OutstandingAmount: decimal.NewFromFloat(float64(i) + 0.25),
			PostingDate:       report.AddDate(0, 0, -i*3),
		})
	}
	entries := Aggregate("Supplier", invoices, report)
	require.Len(t, entries, len(parties))

	grand := decimal.Zero
	for _, e := range entries {
		sum := e.Range1.Add(e.Range2).Add(e.Range3).Add(e.Range4)
		require.True(t, sum.Equal(e.TotalOutstanding), "party %s", e.Party)
		grand = grand.Add(e.TotalOutstanding)
	}
	want := decimal.Zero
	for _, inv := range invoices {
		want = want.Add(inv.OutstandingAmount)
	}
	require.True(t, grand.Equal(want))
}

func TestAggregateEmpty(t *testing.T) {
	entries := Aggregate("Customer", nil, time.Now())
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestParseReportDate(t *testing.T) {
	now := time.Date(2024, 5, 17, 15, 4, 5, 0, time.UTC)

	got, err := ParseReportDate("", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseReportDate("2024-02-29", now)
	require.NoError(t, err)
	require.Equal(t, 29, got.Day())

	_, err = ParseReportDate("29/02/2024", now)
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)
}

func TestParseReportDateDefaultsToUTCDay(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)
	// 05:00 on 1 April in Sydney is still 31 March in UTC.
	got, err := ParseReportDate("", time.Date(2024, 4, 1, 5, 0, 0, 0, sydney))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), got)

	denver := time.FixedZone("MST", -7*60*60)
	// 20:00 on 31 March in Denver is already 1 April in UTC.
	got, err = ParseReportDate("", time.Date(2024, 3, 31, 20, 0, 0, 0, denver))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), got)
}
