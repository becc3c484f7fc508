package register

import (
	"time"
)

// Product is one medicinal product record assembled from a register list
// page and, optionally, its product page.
type Product struct {
	EUNumber   string   `json:"eu_number" csv:"eu_number"`
	Prefix     string   `json:"prefix" csv:"prefix"`
	ID         int64    `json:"id" csv:"id"`
	Name       string   `json:"name" csv:"name"`
	INN        string   `json:"inn" csv:"inn"`
	Indication string   `json:"indication" csv:"indication"`
	Company    string   `json:"company" csv:"company"`
	MAH        string   `json:"mah,omitempty" csv:"mah"`
	ATCCodes   []string `json:"atc_codes,omitempty" csv:"-"`
	EMALinks   []string `json:"ema_links,omitempty" csv:"-"`
	Register   string   `json:"register" csv:"register"`
}

// Procedure is one row of a product page's EC procedures table, with
// constructed English document URLs where the register publishes them.
type Procedure struct {
	EUNumber       string     `json:"eu_number" csv:"eu_number"`
	ProcedureID    string     `json:"procedure_id" csv:"procedure_id"`
	CloseDate      *time.Time `json:"close_date,omitempty" csv:"close_date"`
	Type           string     `json:"procedure_type" csv:"procedure_type"`
	EMANumber      string     `json:"ema_number" csv:"ema_number"`
	DecisionNumber string     `json:"decision_number" csv:"decision_number"`
	DecisionDate   *time.Time `json:"decision_date,omitempty" csv:"decision_date"`
	DecisionURL    string     `json:"decisions_en,omitempty" csv:"decisions_en"`
	AnnexURL       string     `json:"annexes_en,omitempty" csv:"annexes_en"`
}

// SummaryURL returns the URL of the English product summary. The SmPC is
// published as part of the annex document, so this aliases AnnexURL.
func (p Procedure) SummaryURL() string {
	return p.AnnexURL
}

// DedupeProducts returns products with duplicate EU numbers removed, first
// occurrence wins. List pages can repeat a product across page boundaries.
func DedupeProducts(products []Product) []Product {
	seen := make(map[string]bool, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if seen[p.EUNumber] {
			continue
		}
		seen[p.EUNumber] = true
		out = append(out, p)
	}
	return out
}
