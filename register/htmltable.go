package register

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// productHref matches product page links like h123.htm or w1507.htm.
var productHref = regexp.MustCompile(`([a-z])(\d+)\.htm$`)

// ParseListTable is a fallback for register pages that render a plain HTML
// table instead of embedding a dataSet script. Rows are expected to carry
// the EU number (linking to the product page), name, INN, indication and
// company in that order.
func ParseListTable(html []byte, reg Register) ([]Product, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var products []Product
	var rowErr error

	doc.Find("table tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return true // header or layout row
		}

		link := cells.Eq(0).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		m := productHref.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			rowErr = fmt.Errorf("row %d: invalid product id in %q: %w", i, href, err)
			return false
		}

		products = append(products, Product{
			EUNumber:   normalizeCell(link.Text()),
			Prefix:     m[1],
			ID:         id,
			Name:       normalizeCell(cells.Eq(1).Text()),
			INN:        normalizeCell(cells.Eq(2).Text()),
			Indication: CleanIndication(normalizeCell(cells.Eq(3).Text())),
			Company:    normalizeCell(cells.Eq(4).Text()),
			Register:   reg.Key,
		})
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return products, nil
}

// normalizeCell collapses whitespace runs into single spaces.
func normalizeCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
