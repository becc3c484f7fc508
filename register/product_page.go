package register

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ProductInfo holds the fields of the first table on a product page,
// embedded as `var dataSet_product_information = [...]`.
type ProductInfo struct {
	EUNumber   string
	Name       string
	INN        string
	Indication string
	MAH        string
	ATCCodes   []string
	EMALinks   []string
}

// infoEntry is one typed entry of the product information dataset.
type infoEntry struct {
	Type  string          `json:"type"`
	Value string          `json:"value"`
	Meta  json.RawMessage `json:"meta"`
}

// atcLevel is one level of an ATC classification entry. Only level 5 codes
// (the full substance codes) are collected.
type atcLevel struct {
	Level string `json:"level"`
	Code  string `json:"code"`
}

type emaLink struct {
	URL string `json:"url"`
}

// ParseProductInfo extracts the product information table from a product
// page. Unknown entry types are logged and skipped so new site fields do
// not break parsing.
func ParseProductInfo(html []byte) (*ProductInfo, error) {
	raw, err := ExtractDataSet(html, "dataSet_product_information")
	if err != nil {
		return nil, err
	}

	var entries []infoEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode product information dataSet: %w", err)
	}

	info := &ProductInfo{}
	for _, e := range entries {
		switch e.Type {
		case "eu_num":
			info.EUNumber = e.Value
		case "name":
			info.Name = e.Value
		case "inn":
			info.INN = e.Value
		case "indication":
			info.Indication = e.Value
		case "mah":
			info.MAH = e.Value
		case "atc":
			codes, err := parseATCCodes(e.Meta)
			if err != nil {
				return nil, fmt.Errorf("failed to decode atc meta: %w", err)
			}
			info.ATCCodes = codes
		case "ema_links":
			links, err := parseEMALinks(e.Meta)
			if err != nil {
				return nil, fmt.Errorf("failed to decode ema_links meta: %w", err)
			}
			info.EMALinks = links
		case "orphan_links":
			// Not carried in the record shape.
		default:
			slog.Warn("unknown product information type, skipping", "type", e.Type)
		}
	}

	return info, nil
}

func parseATCCodes(meta json.RawMessage) ([]string, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	var entries [][]atcLevel
	if err := json.Unmarshal(meta, &entries); err != nil {
		return nil, err
	}
	var codes []string
	for _, entry := range entries {
		for _, level := range entry {
			if level.Level == "5" {
				codes = append(codes, level.Code)
			}
		}
	}
	return codes, nil
}

func parseEMALinks(meta json.RawMessage) ([]string, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	var links []emaLink
	if err := json.Unmarshal(meta, &links); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.URL)
	}
	return urls, nil
}

// MismatchError reports a disagreement between a register list row and the
// corresponding product page.
type MismatchError struct {
	EUNumber  string
	Field     string
	ListValue string
	PageValue string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("product %s: %s mismatch between list (%q) and product page (%q)",
		e.EUNumber, e.Field, e.ListValue, e.PageValue)
}

// VerifyListConsistency checks that the fields shared between a list row
// and its product page agree. Empty product page fields are not compared:
// a page may omit a field the list carries.
func VerifyListConsistency(p Product, info *ProductInfo) error {
	checks := []struct {
		field      string
		list, page string
	}{
		{"name", p.Name, info.Name},
		{"eu_number", p.EUNumber, info.EUNumber},
		{"inn", p.INN, info.INN},
	}
	for _, c := range checks {
		if c.page == "" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(c.list), strings.TrimSpace(c.page)) {
			return &MismatchError{
				EUNumber:  p.EUNumber,
				Field:     c.field,
				ListValue: c.list,
				PageValue: c.page,
			}
		}
	}
	return nil
}

// ApplyProductInfo copies the product-page-only fields onto a list product.
// Fields already present on the list row (name, INN, indication) keep the
// list values.
func ApplyProductInfo(p *Product, info *ProductInfo) {
	p.MAH = info.MAH
	p.ATCCodes = info.ATCCodes
	p.EMALinks = info.EMALinks
}
