package register

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the date format used by the register datasets.
const DateLayout = "2006-01-02"

// procEntry mirrors one element of a product page's `var dataSet_proc`
// array.
type procEntry struct {
	ID        json.Number `json:"id"`
	Closed    string      `json:"closed"`
	Type      string      `json:"type"`
	EMANumber string      `json:"ema_number"`
	Decision  struct {
		Number string `json:"number"`
		Date   string `json:"date"`
	} `json:"decision"`
	FilesDec []fileCode `json:"files_dec"`
	FilesAnx []fileCode `json:"files_anx"`
}

type fileCode struct {
	Code string `json:"code"`
}

func hasEnglish(files []fileCode) bool {
	for _, f := range files {
		if f.Code == "en" {
			return true
		}
	}
	return false
}

// ParseProcedures extracts the EC procedures table from a product page.
// English document URLs are constructed only when a decision date exists
// and the corresponding files list advertises an "en" entry:
//
//	{base}/{year}/{YYYYMMDD}{procID}/dec_{procID}_en.pdf
//	{base}/{year}/{YYYYMMDD}{procID}/anx_{procID}_en.pdf
//
// A page without a dataSet_proc variable yields no procedures and no error:
// some products have no published procedures.
func ParseProcedures(html []byte, euNumber, baseURL string) ([]Procedure, error) {
	raw, err := ExtractDataSet(html, "dataSet_proc")
	if err != nil {
		return nil, nil
	}

	var entries []procEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode procedures dataSet: %w", err)
	}

	procedures := make([]Procedure, 0, len(entries))
	for _, e := range entries {
		proc := Procedure{
			EUNumber:       euNumber,
			ProcedureID:    e.ID.String(),
			Type:           e.Type,
			EMANumber:      e.EMANumber,
			DecisionNumber: e.Decision.Number,
		}

		if e.Closed != "" {
			t, err := time.Parse(DateLayout, e.Closed)
			if err == nil {
				proc.CloseDate = &t
			}
		}

		if e.Decision.Date != "" {
			decDate, err := time.Parse(DateLayout, e.Decision.Date)
			if err != nil {
				return nil, fmt.Errorf("procedure %s: invalid decision date %q: %w",
					proc.ProcedureID, e.Decision.Date, err)
			}
			proc.DecisionDate = &decDate

			path := fmt.Sprintf("%s/%d/%s%s",
				baseURL, decDate.Year(), decDate.Format("20060102"), proc.ProcedureID)
			if hasEnglish(e.FilesDec) {
				proc.DecisionURL = fmt.Sprintf("%s/dec_%s_en.pdf", path, proc.ProcedureID)
			}
			if hasEnglish(e.FilesAnx) {
				proc.AnnexURL = fmt.Sprintf("%s/anx_%s_en.pdf", path, proc.ProcedureID)
			}
		}

		procedures = append(procedures, proc)
	}

	return procedures, nil
}
