// Package report turns raw store aggregates into the figures the reporting
// screens render: headline overview, pie-chart slices, comparative periods.
// Query failures are caught here and degrade to zero values so a broken
// aggregate never takes a screen down.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ksanogo/cabas/internal/model"
	"github.com/ksanogo/cabas/internal/store"
)

// Granularity of a comparative-periods report.
const (
	GranularityWeek  = "week"
	GranularityMonth = "month"
)

// pieSliceLimit caps the breakdown for chart rendering; the remainder is
// folded into one generic slice.
const pieSliceLimit = 8

const otherSliceLabel = "Autres"

type Service struct {
	reports *store.ReportStore
	logger  *slog.Logger
}

func NewService(reports *store.ReportStore, logger *slog.Logger) *Service {
	return &Service{reports: reports, logger: logger}
}

// Overview returns the headline figures. Each figure degrades independently:
// a failing query is logged and reported as its zero value.
func (s *Service) Overview() model.Overview {
	var o model.Overview

	total, err := s.reports.TotalSpend()
	if err != nil {
		s.logger.Error("overview total spend", "error", err)
	}
	o.TotalSpend = total

	count, err := s.reports.CountPurchases()
	if err != nil {
		s.logger.Error("overview purchase count", "error", err)
	}
	o.PurchaseCount = count

	top, err := s.reports.TopProductByQuantity()
	if err != nil {
		s.logger.Error("overview top product", "error", err)
	}
	o.TopProduct = top

	best, err := s.reports.BestSpendingDay()
	if err != nil {
		s.logger.Error("overview best day", "error", err)
	}
	o.BestDay = best

	return o
}

// PieChart returns up to pieSliceLimit slices of spend by product plus an
// "Autres" slice holding the remainder, each with its share of the total.
func (s *Service) PieChart(start, end *time.Time) []model.PieSlice {
	breakdown, err := s.reports.BreakdownByProduct(start, end)
	if err != nil {
		s.logger.Error("pie chart breakdown", "error", err)
		return []model.PieSlice{}
	}

	var total float64
	for _, pa := range breakdown {
		total += pa.Amount
	}

	slices := make([]model.PieSlice, 0, pieSliceLimit+1)
	var rest float64
	for i, pa := range breakdown {
		if i < pieSliceLimit {
			slices = append(slices, model.PieSlice{
				Label:   pa.Label,
				Amount:  pa.Amount,
				Percent: percent(pa.Amount, total),
			})
			continue
		}
		rest += pa.Amount
	}
	if rest > 0 {
		slices = append(slices, model.PieSlice{
			Label:   otherSliceLabel,
			Amount:  rest,
			Percent: percent(rest, total),
		})
	}
	return slices
}

// Breakdown is the uncapped spend-by-product table, empty on failure.
func (s *Service) Breakdown(start, end *time.Time) []model.ProductAmount {
	breakdown, err := s.reports.BreakdownByProduct(start, end)
	if err != nil {
		s.logger.Error("breakdown by product", "error", err)
		return []model.ProductAmount{}
	}
	if breakdown == nil {
		breakdown = []model.ProductAmount{}
	}
	return breakdown
}

// ComparativePeriods summarizes count consecutive calendar weeks or months
// ending at now, oldest first. Each period is computed with independent
// range queries; a failing period degrades to zero.
func (s *Service) ComparativePeriods(granularity string, count int, now time.Time) []model.PeriodSummary {
	if count < 1 {
		return []model.PeriodSummary{}
	}
	if granularity != GranularityWeek {
		granularity = GranularityMonth
	}

	periods := make([]model.PeriodSummary, 0, count)
	for i := count - 1; i >= 0; i-- {
		var p model.PeriodSummary
		switch granularity {
		case GranularityWeek:
			start := startOfWeek(now).AddDate(0, 0, -7*i)
			year, week := start.ISOWeek()
			p.Start = start
			p.End = start.AddDate(0, 0, 6)
			p.Label = fmt.Sprintf("%d-W%02d", year, week)
		default:
			first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
			p.Start = first
			p.End = first.AddDate(0, 1, -1)
			p.Label = first.Format("Jan 2006")
		}

		amount, err := s.reports.TotalSpendInRange(p.Start, p.End)
		if err != nil {
			s.logger.Error("period spend", "period", p.Label, "error", err)
		}
		p.Amount = amount

		purchases, err := s.reports.CountPurchasesInRange(p.Start, p.End)
		if err != nil {
			s.logger.Error("period purchase count", "period", p.Label, "error", err)
		}
		p.PurchaseCount = purchases

		periods = append(periods, p)
	}
	return periods
}

// History returns a product's purchase history, empty on failure.
func (s *Service) History(label string, start, end time.Time) []model.Transaction {
	history, err := s.reports.ProductHistory(label, start, end)
	if err != nil {
		s.logger.Error("product history", "label", label, "error", err)
		return []model.Transaction{}
	}
	if history == nil {
		history = []model.Transaction{}
	}
	return history
}

// Labels returns every distinct product label, empty on failure.
func (s *Service) Labels() []string {
	labels, err := s.reports.DistinctProductLabels()
	if err != nil {
		s.logger.Error("distinct labels", "error", err)
		return []string{}
	}
	if labels == nil {
		labels = []string{}
	}
	return labels
}

// percent guards the divide-by-zero case: a share of an empty total is 0,
// never NaN.
func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// startOfWeek truncates t to the Monday of its week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
