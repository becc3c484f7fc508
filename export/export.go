// Package export emits stored register records as flat files. The flatfile
// shape joins each product with its procedures, one row per procedure;
// products without procedures still emit one row with empty procedure
// columns.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"ematools/register"
)

// Record is one row of the flatfile export.
type Record struct {
	EUNumber       string `json:"eu_number" csv:"eu_number"`
	Name           string `json:"name" csv:"name"`
	INN            string `json:"inn" csv:"inn"`
	Indication     string `json:"indication" csv:"indication"`
	Company        string `json:"company" csv:"company"`
	MAH            string `json:"mah" csv:"mah"`
	ATCCodes       string `json:"atc_codes" csv:"atc_codes"`
	EMALinks       string `json:"ema_links" csv:"ema_links"`
	Register       string `json:"register" csv:"register"`
	ProcedureID    string `json:"procedure_id,omitempty" csv:"procedure_id"`
	CloseDate      string `json:"close_date,omitempty" csv:"close_date"`
	ProcedureType  string `json:"procedure_type,omitempty" csv:"procedure_type"`
	EMANumber      string `json:"ema_number,omitempty" csv:"ema_number"`
	DecisionNumber string `json:"decision_number,omitempty" csv:"decision_number"`
	SummaryEN      string `json:"summary_en,omitempty" csv:"summary_en"`
	DecisionsEN    string `json:"decisions_en,omitempty" csv:"decisions_en"`
	AnnexesEN      string `json:"annexes_en,omitempty" csv:"annexes_en"`
}

// Flatten joins products with their procedures into flat records.
func Flatten(products []register.Product, procedures map[string][]register.Procedure) []Record {
	var records []Record

	for _, p := range products {
		base := Record{
			EUNumber:   p.EUNumber,
			Name:       p.Name,
			INN:        p.INN,
			Indication: p.Indication,
			Company:    p.Company,
			MAH:        p.MAH,
			ATCCodes:   strings.Join(p.ATCCodes, ";"),
			EMALinks:   strings.Join(p.EMALinks, ";"),
			Register:   p.Register,
		}

		procs := procedures[p.EUNumber]
		if len(procs) == 0 {
			records = append(records, base)
			continue
		}

		for _, proc := range procs {
			record := base
			record.ProcedureID = proc.ProcedureID
			record.ProcedureType = proc.Type
			record.EMANumber = proc.EMANumber
			record.DecisionNumber = proc.DecisionNumber
			record.DecisionsEN = proc.DecisionURL
			record.AnnexesEN = proc.AnnexURL
			record.SummaryEN = proc.SummaryURL()
			if proc.CloseDate != nil {
				record.CloseDate = proc.CloseDate.Format(register.DateLayout)
			}
			records = append(records, record)
		}
	}

	return records
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(writer)

	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
