package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one persisted price observation. Price is carried as an
// exact decimal end to end; routing it through float64 anywhere would
// silently lose NUMERIC(24,10) precision.
type PriceRecord struct {
	ID       int64
	Currency string
	Date     time.Time
	Price    decimal.Decimal
}

// PriceView is the JSON shape returned by the API. The timestamp has second
// precision and no offset; callers treat it as UTC by convention.
type PriceView struct {
	ID       int64  `json:"id"`
	Currency string `json:"currency"`
	Date     string `json:"date_"`
	Price    string `json:"price"`
}

const viewTimeLayout = "2006-01-02T15:04:05"

func (p *PriceRecord) View() PriceView {
	return PriceView{
		ID:       p.ID,
		Currency: p.Currency,
		Date:     p.Date.Format(viewTimeLayout),
		Price:    p.Price.String(),
	}
}

// Page is the paginated history read-model. Total counts every stored
// record, not just the returned slice; TotalPages never drops below 1.
type Page struct {
	Items      []PriceView `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int64       `json:"total"`
	TotalPages int64       `json:"total_pages"`
}
