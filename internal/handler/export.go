package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ksanogo/cabas/internal/report"
)

// ExportHandler renders report data as CSV downloads. The document renderer
// on the client side (PDF, print view) consumes these.
type ExportHandler struct {
	reports *report.Service
}

func NewExportHandler(reports *report.Service) *ExportHandler {
	return &ExportHandler{reports: reports}
}

func (h *ExportHandler) ProductHistory(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.URL.Query().Get("label"))
	if label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	now := time.Now()
	if end == nil {
		end = &now
	}
	if start == nil {
		from := now.AddDate(-1, 0, 0)
		start = &from
	}

	history := h.reports.History(label, *start, *end)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "historique-"+label+".csv"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"date", "list", "label", "quantity", "unit", "unit_price", "amount"})
	for _, tr := range history {
		cw.Write([]string{
			tr.Date.Format("2006-01-02"),
			tr.ListName,
			tr.Label,
			strconv.FormatFloat(tr.Quantity, 'f', -1, 64),
			tr.Unit,
			strconv.FormatFloat(tr.UnitPrice, 'f', -1, 64),
			strconv.FormatFloat(tr.Amount, 'f', -1, 64),
		})
	}
	cw.Flush()
}

func (h *ExportHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	if (start == nil) != (end == nil) {
		writeError(w, http.StatusBadRequest, "start and end must be given together")
		return
	}

	breakdown := h.reports.Breakdown(start, end)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="depenses-par-produit.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"label", "amount"})
	for _, pa := range breakdown {
		cw.Write([]string{pa.Label, strconv.FormatFloat(pa.Amount, 'f', -1, 64)})
	}
	cw.Flush()
}
