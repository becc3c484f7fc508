package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ematools/register"
)

func sampleProducts() []register.Product {
	return []register.Product{
		{
			EUNumber:   "EU/1/20/1507",
			Name:       "Examplamab",
			INN:        "examplamab",
			Indication: "Treatment of adults",
			Company:    "Example Pharma B.V.",
			MAH:        "Example Pharma B.V.",
			ATCCodes:   []string{"L04AA58", "L04AA99"},
			EMALinks:   []string{"https://example.org/epar"},
			Register:   "active",
		},
		{
			EUNumber: "EU/1/08/472",
			Name:     "Othervir",
			Register: "active",
		},
	}
}

func sampleProcedures() map[string][]register.Procedure {
	closed := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	return map[string][]register.Procedure{
		"EU/1/20/1507": {
			{
				EUNumber:       "EU/1/20/1507",
				ProcedureID:    "900001",
				CloseDate:      &closed,
				Type:           "Centralised - Authorisation",
				EMANumber:      "EMEA/H/C/005501",
				DecisionNumber: "C(2021)1",
				DecisionURL:    "https://example.org/2021/dec_900001_en.pdf",
				AnnexURL:       "https://example.org/2021/anx_900001_en.pdf",
			},
			{
				EUNumber:    "EU/1/20/1507",
				ProcedureID: "900002",
				Type:        "Centralised - Transfer",
			},
		},
	}
}

// TestFlatten verifies one row per procedure plus one row for the
// procedureless product
func TestFlatten(t *testing.T) {
	records := Flatten(sampleProducts(), sampleProcedures())
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "EU/1/20/1507", first.EUNumber)
	assert.Equal(t, "L04AA58;L04AA99", first.ATCCodes)
	assert.Equal(t, "900001", first.ProcedureID)
	assert.Equal(t, "2021-03-15", first.CloseDate)
	assert.Equal(t, "https://example.org/2021/dec_900001_en.pdf", first.DecisionsEN)
	assert.Equal(t, "https://example.org/2021/anx_900001_en.pdf", first.AnnexesEN)
	assert.Equal(t, first.AnnexesEN, first.SummaryEN, "summary aliases the annex")

	second := records[1]
	assert.Equal(t, "900002", second.ProcedureID)
	assert.Empty(t, second.CloseDate)
	assert.Empty(t, second.AnnexesEN)

	orphan := records[2]
	assert.Equal(t, "EU/1/08/472", orphan.EUNumber)
	assert.Empty(t, orphan.ProcedureID, "procedureless product keeps empty procedure columns")
}

// TestWriteCSV verifies the header row and field content
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Flatten(sampleProducts(), sampleProcedures())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header plus three records")

	header := lines[0]
	assert.True(t, strings.HasPrefix(header, "eu_number,name,inn,"), "header: %s", header)
	assert.Contains(t, header, "summary_en")
	assert.Contains(t, lines[1], "EU/1/20/1507")
	assert.Contains(t, lines[1], "L04AA58;L04AA99")
	assert.Contains(t, lines[3], "EU/1/08/472")
}

// TestWriteJSON verifies the output decodes back to the records
func TestWriteJSON(t *testing.T) {
	records := Flatten(sampleProducts(), sampleProcedures())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	var decoded []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, records, decoded)
}

// TestWriteCSV_Empty verifies no records produce no output
func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}
