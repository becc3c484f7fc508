// Package smpc extracts text from the annex PDFs published alongside
// register procedures. The annex carries the Summary of Product
// Characteristics; section 4.8 lists the undesirable effects.
package smpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"ematools/fetch"
)

// ErrSectionNotFound indicates the requested SmPC section heading was not
// present in the document text.
var ErrSectionNotFound = errors.New("SmPC section not found")

// The heading numbers tolerate arbitrary whitespace because PDF text
// extraction flattens layout.
var (
	section48Start = regexp.MustCompile(`(?i)4\.\s*8\.?\s+Undesirable\s+effects`)
	section48End   = regexp.MustCompile(`(?i)4\.\s*9\.?\s+Overdose`)
)

// ExtractText returns the plain text of a PDF document.
func ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return string(text), nil
}

// Section48 slices the "4.8 Undesirable effects" section out of SmPC text:
// everything between the 4.8 heading and the 4.9 (Overdose) heading. When
// the 4.9 heading is missing the section runs to the end of the text.
func Section48(text string) (string, error) {
	start := section48Start.FindStringIndex(text)
	if start == nil {
		return "", fmt.Errorf("%w: 4.8 Undesirable effects", ErrSectionNotFound)
	}

	section := text[start[1]:]
	if end := section48End.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	return strings.TrimSpace(section), nil
}

// UndesirableEffects fetches an annex PDF and returns its section 4.8 text.
func UndesirableEffects(ctx context.Context, client *fetch.Client, annexURL string) (string, error) {
	data, err := client.GetPDF(ctx, annexURL, false)
	if err != nil {
		return "", fmt.Errorf("failed to fetch annex: %w", err)
	}

	text, err := ExtractText(data)
	if err != nil {
		return "", err
	}

	return Section48(text)
}
