package register

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ErrNoDataSet indicates that a page does not embed the requested
// JavaScript dataSet variable. List pagination uses this to detect the end
// of the register.
var ErrNoDataSet = errors.New("no dataSet variable found in page")

var (
	datasetRegexpsMu sync.Mutex
	datasetRegexps   = map[string]*regexp.Regexp{}
)

// datasetRegexp returns a compiled matcher for `var <name> = [...];`. The
// array literal spans multiple lines, hence the (?s) flag.
func datasetRegexp(name string) *regexp.Regexp {
	datasetRegexpsMu.Lock()
	defer datasetRegexpsMu.Unlock()

	if re, ok := datasetRegexps[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?s)var ` + regexp.QuoteMeta(name) + ` = (\[.*?\]);`)
	datasetRegexps[name] = re
	return re
}

// ExtractDataSet pulls the JSON array assigned to the named JavaScript
// variable out of a register page. The raw literal is returned with control
// characters blanked, ready for json.Unmarshal: the pages embed stray
// control bytes that the encoding/json decoder rejects.
func ExtractDataSet(html []byte, name string) ([]byte, error) {
	match := datasetRegexp(name).FindSubmatch(html)
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDataSet, name)
	}
	return []byte(cleanControlChars(string(match[1]))), nil
}

// cleanControlChars replaces C0 and C1 control characters with spaces,
// mirroring the sanitation the register pages require before JSON decoding.
func cleanControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1f || (r >= 0x7f && r <= 0x9f) {
			return ' '
		}
		return r
	}, s)
}
