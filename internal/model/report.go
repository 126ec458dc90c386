package model

import "time"

// ProductAmount is a spend total grouped by product label.
type ProductAmount struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ProductQuantity is a quantity total grouped by product label.
type ProductQuantity struct {
	Label         string  `json:"label"`
	TotalQuantity float64 `json:"total_quantity"`
}

// DaySpend is the spend total of one calendar day (YYYY-MM-DD).
type DaySpend struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
}

// PeriodSummary is one calendar week or month of a comparative report.
type PeriodSummary struct {
	Label         string    `json:"label"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Amount        float64   `json:"amount"`
	PurchaseCount int       `json:"purchase_count"`
}

// Transaction is one purchased line item in a product's history, carrying
// the owning list's name and date.
type Transaction struct {
	ItemID    int64     `json:"item_id"`
	ListID    int64     `json:"list_id"`
	ListName  string    `json:"list_name"`
	Date      time.Time `json:"date"`
	Label     string    `json:"label"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Amount    float64   `json:"amount"`
	Unit      string    `json:"unit"`
}

// PieSlice is one slice of the spend-by-product chart.
type PieSlice struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Overview is the headline figures of the reports screen.
type Overview struct {
	TotalSpend    float64          `json:"total_spend"`
	PurchaseCount int              `json:"purchase_count"`
	TopProduct    *ProductQuantity `json:"top_product"`
	BestDay       *DaySpend        `json:"best_day"`
}
