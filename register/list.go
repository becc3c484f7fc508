package register

import (
	"encoding/json"
	"fmt"
	"strings"
)

// listEntry mirrors one element of the `var dataSet = [...]` array on a
// register list page.
type listEntry struct {
	EUNum struct {
		Display string      `json:"display"`
		Pre     string      `json:"pre"`
		ID      json.Number `json:"id"`
	} `json:"eu_num"`
	Name       string `json:"name"`
	INN        string `json:"inn"`
	Indication string `json:"indication"`
	Company    string `json:"company"`
}

// indicationCleaner strips the markup remnants and bullet glyphs that leak
// into the indication strings. The mojibake variant shows up on pages served
// with a mislabeled charset.
var indicationCleaner = strings.NewReplacer(
	"<br/>", " ",
	"<br>", " ",
	"<u>", " ",
	"</u>", " ",
	"• ", " ",
	"â€¢ ", " ",
)

// CleanIndication normalizes an indication string from a register dataset.
func CleanIndication(s string) string {
	return strings.TrimSpace(indicationCleaner.Replace(s))
}

// ParseListPage extracts product rows from one register list page. The
// nested eu_num structure is flattened into the Product fields. Returns
// ErrNoDataSet (wrapped) when the page carries no dataSet variable.
func ParseListPage(html []byte, reg Register) ([]Product, error) {
	raw, err := ExtractDataSet(html, "dataSet")
	if err != nil {
		return nil, err
	}

	var entries []listEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode list dataSet: %w", err)
	}

	products := make([]Product, 0, len(entries))
	for _, e := range entries {
		id, err := e.EUNum.ID.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q for %s: %w", e.EUNum.ID, e.EUNum.Display, err)
		}
		products = append(products, Product{
			EUNumber:   e.EUNum.Display,
			Prefix:     e.EUNum.Pre,
			ID:         id,
			Name:       e.Name,
			INN:        e.INN,
			Indication: CleanIndication(e.Indication),
			Company:    e.Company,
			Register:   reg.Key,
		})
	}

	return products, nil
}
