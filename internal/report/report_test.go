package report

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/ksanogo/cabas/internal/database"
	"github.com/ksanogo/cabas/internal/store"
)

func setupTestService(t *testing.T) (*Service, *store.ListStore, *store.ItemStore) {
	t.Helper()
	db, err := database.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := NewService(store.NewReportStore(db), slog.Default())
	return svc, store.NewListStore(db), store.NewItemStore(db)
}

func addPurchase(t *testing.T, ls *store.ListStore, is *store.ItemStore, name string, date time.Time, label string, qty, price float64) {
	t.Helper()
	list, err := ls.Create(name, date)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	item, err := is.Create(list.ID, label, "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if qty > 0 && price > 0 {
		if _, err := is.Check(item.ID, qty, price); err != nil {
			t.Fatalf("check item: %v", err)
		}
	}
}

func TestOverviewEmptyStore(t *testing.T) {
	svc, _, _ := setupTestService(t)

	o := svc.Overview()
	if o.TotalSpend != 0 {
		t.Errorf("total spend = %v, want 0", o.TotalSpend)
	}
	if o.PurchaseCount != 0 {
		t.Errorf("purchase count = %d, want 0", o.PurchaseCount)
	}
	if o.TopProduct != nil {
		t.Errorf("top product = %+v, want nil", o.TopProduct)
	}
	if o.BestDay != nil {
		t.Errorf("best day = %+v, want nil", o.BestDay)
	}
}

func TestOverviewFigures(t *testing.T) {
	svc, ls, is := setupTestService(t)

	day := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	addPurchase(t, ls, is, "Epicerie", day, "Riz", 2, 3000)
	addPurchase(t, ls, is, "Epicerie", day, "Savon", 0, 0)

	o := svc.Overview()
	if o.TotalSpend != 6000 {
		t.Errorf("total spend = %v, want 6000", o.TotalSpend)
	}
	if o.PurchaseCount != 1 {
		t.Errorf("purchase count = %d, want 1", o.PurchaseCount)
	}
	if o.TopProduct == nil || o.TopProduct.Label != "Riz" {
		t.Errorf("top product = %+v, want Riz", o.TopProduct)
	}
	if o.BestDay == nil || o.BestDay.Day != "2025-01-10" || o.BestDay.Amount != 6000 {
		t.Errorf("best day = %+v, want 2025-01-10/6000", o.BestDay)
	}
}

func TestPieChartEmptyStore(t *testing.T) {
	svc, _, _ := setupTestService(t)

	slices := svc.PieChart(nil, nil)
	if len(slices) != 0 {
		t.Errorf("slices = %v, want empty", slices)
	}
}

func TestPieChartPercentages(t *testing.T) {
	svc, ls, is := setupTestService(t)

	day := time.Now()
	addPurchase(t, ls, is, "L", day, "Riz", 1, 7500)
	addPurchase(t, ls, is, "L", day, "Huile", 1, 2500)

	slices := svc.PieChart(nil, nil)
	if len(slices) != 2 {
		t.Fatalf("len = %d, want 2", len(slices))
	}
	if slices[0].Label != "Riz" || slices[0].Percent != 75 {
		t.Errorf("slices[0] = %+v, want Riz/75%%", slices[0])
	}
	if slices[1].Label != "Huile" || slices[1].Percent != 25 {
		t.Errorf("slices[1] = %+v, want Huile/25%%", slices[1])
	}
}

func TestPieChartFoldsTailIntoOther(t *testing.T) {
	svc, ls, is := setupTestService(t)

	day := time.Now()
	// Ten products with strictly decreasing spend.
	for i := 0; i < 10; i++ {
		label := fmt.Sprintf("Produit %02d", i)
		addPurchase(t, ls, is, "L", day, label, 1, float64(1000-i*50))
	}

	slices := svc.PieChart(nil, nil)
	if len(slices) != 9 {
		t.Fatalf("len = %d, want 8 slices plus the fold", len(slices))
	}
	last := slices[len(slices)-1]
	if last.Label != "Autres" {
		t.Errorf("last slice = %q, want Autres", last.Label)
	}
	// Products 8 and 9: 600 + 550.
	if last.Amount != 1150 {
		t.Errorf("folded amount = %v, want 1150", last.Amount)
	}

	var total float64
	for _, s := range slices {
		total += s.Percent
	}
	if total < 99.99 || total > 100.01 {
		t.Errorf("percent total = %v, want 100", total)
	}
}

func TestComparativePeriodsMonths(t *testing.T) {
	svc, ls, is := setupTestService(t)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	addPurchase(t, ls, is, "Fevrier", time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC), "Riz", 1, 2000)
	addPurchase(t, ls, is, "Mars", time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), "Riz", 1, 3000)

	periods := svc.ComparativePeriods(GranularityMonth, 3, now)
	if len(periods) != 3 {
		t.Fatalf("len = %d, want 3", len(periods))
	}

	// Oldest first: january, february, march.
	if periods[0].Label != "Jan 2025" {
		t.Errorf("periods[0].Label = %q, want Jan 2025", periods[0].Label)
	}
	if periods[0].Amount != 0 || periods[0].PurchaseCount != 0 {
		t.Errorf("january = %+v, want empty", periods[0])
	}
	if periods[1].Amount != 2000 || periods[1].PurchaseCount != 1 {
		t.Errorf("february = %+v, want 2000/1", periods[1])
	}
	if periods[2].Amount != 3000 {
		t.Errorf("march = %+v, want 3000", periods[2])
	}

	first := periods[2].Start
	if first.Day() != 1 || first.Month() != time.March {
		t.Errorf("march start = %v, want first of month", first)
	}
	if periods[2].End.Day() != 31 {
		t.Errorf("march end = %v, want last of month", periods[2].End)
	}
}

func TestComparativePeriodsWeeks(t *testing.T) {
	svc, ls, is := setupTestService(t)

	// Wednesday 2025-03-12; its week runs Mon 2025-03-10 to Sun 2025-03-16.
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	addPurchase(t, ls, is, "Cette semaine", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "Riz", 1, 1000)
	addPurchase(t, ls, is, "Semaine passee", time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC), "Riz", 1, 500)

	periods := svc.ComparativePeriods(GranularityWeek, 2, now)
	if len(periods) != 2 {
		t.Fatalf("len = %d, want 2", len(periods))
	}

	current := periods[1]
	if current.Start.Weekday() != time.Monday {
		t.Errorf("week start = %v, want a Monday", current.Start)
	}
	if current.Start.Day() != 10 {
		t.Errorf("week start day = %d, want 10", current.Start.Day())
	}
	if current.End.Day() != 16 {
		t.Errorf("week end day = %d, want 16", current.End.Day())
	}
	if current.Label != "2025-W11" {
		t.Errorf("label = %q, want 2025-W11", current.Label)
	}
	if current.Amount != 1000 {
		t.Errorf("current week amount = %v, want 1000", current.Amount)
	}
	if periods[0].Amount != 500 {
		t.Errorf("previous week amount = %v, want 500", periods[0].Amount)
	}
}

func TestComparativePeriodsBadInput(t *testing.T) {
	svc, _, _ := setupTestService(t)

	if got := svc.ComparativePeriods(GranularityMonth, 0, time.Now()); len(got) != 0 {
		t.Errorf("count 0: len = %d, want 0", len(got))
	}
	// An unknown granularity falls back to months.
	got := svc.ComparativePeriods("fortnight", 2, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Label != "Mar 2025" {
		t.Errorf("label = %q, want monthly fallback", got[1].Label)
	}
}

func TestHistoryAndLabelsNeverNil(t *testing.T) {
	svc, _, _ := setupTestService(t)

	if got := svc.History("Riz", time.Now().AddDate(0, -1, 0), time.Now()); got == nil {
		t.Error("history = nil, want empty slice")
	}
	if got := svc.Labels(); got == nil {
		t.Error("labels = nil, want empty slice")
	}
	if got := svc.Breakdown(nil, nil); got == nil {
		t.Error("breakdown = nil, want empty slice")
	}
}

func TestPercentZeroTotal(t *testing.T) {
	if got := percent(5, 0); got != 0 {
		t.Errorf("percent(5, 0) = %v, want 0", got)
	}
	if got := percent(25, 100); got != 25 {
		t.Errorf("percent(25, 100) = %v, want 25", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		in   time.Time
		want int
	}{
		{time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), 10}, // monday stays
		{time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC), 10}, // wednesday
		{time.Date(2025, 3, 16, 15, 0, 0, 0, time.UTC), 10}, // sunday
	}
	for _, c := range cases {
		got := startOfWeek(c.in)
		if got.Day() != c.want || got.Weekday() != time.Monday {
			t.Errorf("startOfWeek(%v) = %v, want day %d", c.in, got, c.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("startOfWeek(%v) = %v, want midnight", c.in, got)
		}
	}
}
