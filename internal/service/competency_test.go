package service

import (
	"errors"
	"testing"
	"time"

	"github.com/comissoes-next/internal/models"
)

type fakeMonthCounter struct {
	counts map[string][2]int64
	calls  map[string]int
	err    error
}

func (f *fakeMonthCounter) CountByMonth(month string) (int64, int64, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[month]++
	if f.err != nil {
		return 0, 0, f.err
	}
	c := f.counts[month]
	return c[0], c[1], nil
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 9, 30, 0, 0, time.UTC)
	}
}

func TestCompetencyResolverRollsClosedMonth(t *testing.T) {
	counter := &fakeMonthCounter{counts: map[string][2]int64{
		"2026-02": {3, 3},
		"2026-03": {4, 1},
	}}
	resolver := newCompetencyResolver(counter, fixedClock(2026, 5, 20))

	comp, err := resolver.Resolve("2026-02-14")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !comp.Rolled || comp.Month != "2026-05" || comp.Date != "2026-05-01" || comp.OriginMonth != "2026-02" {
		t.Fatalf("unexpected rolled competency: %+v", comp)
	}

	comp, err = resolver.Resolve("2026-03-31T23:10:00Z")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if comp.Rolled || comp.Month != "2026-03" || comp.Date != "2026-03-01" {
		t.Fatalf("partially closed month should not roll: %+v", comp)
	}
}

func TestCompetencyResolverEmptyMonthIsOpen(t *testing.T) {
	resolver := newCompetencyResolver(&fakeMonthCounter{}, fixedClock(2026, 5, 20))
	comp, err := resolver.Resolve("2026-01-05")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if comp.Rolled || comp.Month != "2026-01" {
		t.Fatalf("month without entries must stay open: %+v", comp)
	}
}

func TestCompetencyResolverMemoizesPerMonth(t *testing.T) {
	counter := &fakeMonthCounter{counts: map[string][2]int64{"2026-02": {1, 1}}}
	resolver := newCompetencyResolver(counter, fixedClock(2026, 5, 20))
	for _, date := range []string{"2026-02-01", "2026-02-15", "2026-02-28"} {
		if _, err := resolver.Resolve(date); err != nil {
			t.Fatalf("resolve %s failed: %v", date, err)
		}
	}
	if counter.calls["2026-02"] != 1 {
		t.Fatalf("expected one lookup per month, got %d", counter.calls["2026-02"])
	}
}

func TestCompetencyResolverErrors(t *testing.T) {
	resolver := newCompetencyResolver(&fakeMonthCounter{}, fixedClock(2026, 5, 20))
	for _, date := range []string{"", "2026", "abcd-ef-gh"} {
		if _, err := resolver.Resolve(date); err == nil {
			t.Fatalf("expected error for payment date %q", date)
		}
	}

	boom := errors.New("db down")
	resolver = newCompetencyResolver(&fakeMonthCounter{err: boom}, fixedClock(2026, 5, 20))
	if _, err := resolver.Resolve("2026-02-01"); !errors.Is(err, boom) {
		t.Fatalf("expected counter error, got %v", err)
	}
}

func TestPaymentDateOfFallsBackToUpdatedAt(t *testing.T) {
	order := &models.Order{UpdatedAt: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	if got := paymentDateOf(order); got != "2026-04-02" {
		t.Fatalf("expected updated_at fallback, got %s", got)
	}
	order.DataPagamento = " 2026-03-09 "
	if got := paymentDateOf(order); got != "2026-03-09" {
		t.Fatalf("expected payment date, got %s", got)
	}
}
