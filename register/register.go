package register

import (
	"fmt"
)

// DefaultBaseURL is the root of the EC community register of medicinal
// products. List pages and product pages live under /html, procedure
// documents under /{year}.
const DefaultBaseURL = "https://ec.europa.eu/health/documents/community-register"

// Register describes one register listing: the stem of its paginated list
// pages and the filename prefix of its product pages.
type Register struct {
	Key    string `json:"key" yaml:"key"`
	Stem   string `json:"stem" yaml:"stem"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

// ActiveHuman is the register of centrally authorised human medicines.
var ActiveHuman = Register{
	Key:    "active",
	Stem:   "reg_hum_act",
	Prefix: "h",
}

// WithdrawnHuman is the register of withdrawn human medicines. The stem and
// prefix are overridable through configuration in case the site layout
// differs from these defaults.
var WithdrawnHuman = Register{
	Key:    "withdrawn",
	Stem:   "reg_hum_wd",
	Prefix: "w",
}

// ListPageURL returns the URL of the n-th list page (1-based). The first
// page has no number suffix: reg_hum_act.htm, reg_hum_act2.htm, ...
func (r Register) ListPageURL(baseURL string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s/html/%s.htm", baseURL, r.Stem)
	}
	return fmt.Sprintf("%s/html/%s%d.htm", baseURL, r.Stem, page)
}

// ProductPageURL returns the URL of a product page. Numeric IDs below 1000
// are zero-padded to three digits, matching the site's file names.
func (r Register) ProductPageURL(baseURL string, id int64) string {
	return fmt.Sprintf("%s/html/%s%s.htm", baseURL, r.Prefix, FormatProductID(id))
}

// FormatProductID renders a product ID the way the register names its pages.
func FormatProductID(id int64) string {
	if id < 1000 {
		return fmt.Sprintf("%03d", id)
	}
	return fmt.Sprintf("%d", id)
}
