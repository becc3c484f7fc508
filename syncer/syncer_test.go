package syncer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ematools/fetch"
	"ematools/register"
	"ematools/store"
)

const testListPage = `<html><script>
var dataSet = [
  {
    "eu_num": {"display": "EU/1/20/1507", "pre": "h", "id": 1507},
    "name": "Examplamab",
    "inn": "examplamab",
    "indication": "Treatment of adults",
    "company": "Example Pharma B.V."
  },
  {
    "eu_num": {"display": "EU/1/08/472", "pre": "h", "id": 472},
    "name": "Othervir",
    "inn": "othervir",
    "indication": "Plain indication",
    "company": "Other Labs GmbH"
  }
];
</script></html>`

func productPage(euNumber, name, inn string) string {
	return fmt.Sprintf(`<html><script>
var dataSet_product_information = [
  {"type": "eu_num", "value": "%s", "meta": null},
  {"type": "name", "value": "%s", "meta": null},
  {"type": "inn", "value": "%s", "meta": null},
  {"type": "mah", "value": "Holder B.V.", "meta": null},
  {"type": "atc", "value": "", "meta": [[{"level": "5", "code": "L04AA58"}]]}
];
var dataSet_proc = [
  {
    "id": "900001",
    "closed": "2021-03-15",
    "type": "Centralised - Authorisation",
    "ema_number": "EMEA/H/C/005501",
    "decision": {"number": "C(2021)1", "date": "2021-03-12"},
    "files_dec": [{"code": "en"}],
    "files_anx": [{"code": "en"}]
  }
];
</script></html>`, euNumber, name, inn)
}

// newTestEnv builds a syncer against an httptest register site.
func newTestEnv(t *testing.T, handler http.Handler) (*Syncer, *store.Store, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	client, err := fetch.NewClient(fetch.Options{
		CacheDir: filepath.Join(dir, "cache"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	st, err := store.NewStore(filepath.Join(dir, "register.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Concurrency = 2

	return New(client, st, config), st, server
}

// registerSiteHandler serves a two-product register with one list page.
func registerSiteHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/html/reg_hum_act.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testListPage))
	})
	mux.HandleFunc("/html/h1507.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/20/1507", "Examplamab", "examplamab")))
	})
	mux.HandleFunc("/html/h472.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/08/472", "Othervir", "othervir")))
	})
	return mux
}

// TestSyncRegister_FullRun verifies the end-to-end pipeline
func TestSyncRegister_FullRun(t *testing.T) {
	service, st, _ := newTestEnv(t, registerSiteHandler())

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 2, result.Products)
	assert.Equal(t, 0, result.ProductsFailed)
	assert.Equal(t, 2, result.Procedures)
	assert.Equal(t, 0, result.Mismatches)

	product, err := st.GetProduct("EU/1/20/1507")
	require.NoError(t, err)
	assert.Equal(t, "Examplamab", product.Name)
	assert.Equal(t, "Holder B.V.", product.MAH)
	assert.Equal(t, []string{"L04AA58"}, product.ATCCodes)
	assert.Equal(t, "Treatment of adults", product.Indication, "list indication should win")

	procedures, err := st.ListProcedures("EU/1/20/1507")
	require.NoError(t, err)
	require.Len(t, procedures, 1)
	assert.Equal(t, "900001", procedures[0].ProcedureID)
	assert.Contains(t, procedures[0].AnnexURL, "anx_900001_en.pdf")
}

// TestSyncRegister_Pagination verifies multiple list pages are walked until
// a missing page stops the traversal
func TestSyncRegister_Pagination(t *testing.T) {
	secondPage := `<html><script>
var dataSet = [
  {
    "eu_num": {"display": "EU/1/05/300", "pre": "h", "id": 300},
    "name": "Thirdozin",
    "inn": "thirdozin",
    "indication": "x",
    "company": "Third S.A."
  }
];
</script></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/html/reg_hum_act.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testListPage))
	})
	mux.HandleFunc("/html/reg_hum_act2.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(secondPage))
	})
	mux.HandleFunc("/html/h1507.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/20/1507", "Examplamab", "examplamab")))
	})
	mux.HandleFunc("/html/h472.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/08/472", "Othervir", "othervir")))
	})
	mux.HandleFunc("/html/h300.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/05/300", "Thirdozin", "thirdozin")))
	})

	service, st, _ := newTestEnv(t, mux)

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 3, result.Products)

	count, err := st.CountProducts()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

// TestSyncRegister_ProductFailure verifies a missing product page fails
// that product only
func TestSyncRegister_ProductFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html/reg_hum_act.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testListPage))
	})
	mux.HandleFunc("/html/h1507.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/20/1507", "Examplamab", "examplamab")))
	})
	// h472.htm intentionally missing

	service, st, _ := newTestEnv(t, mux)

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Products)
	assert.Equal(t, 1, result.ProductsFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "EU/1/08/472", result.Errors[0].EUNumber)

	_, err = st.GetProduct("EU/1/20/1507")
	assert.NoError(t, err, "healthy product should still be stored")
}

// TestSyncRegister_MismatchCounted verifies list/page disagreement is
// reported but does not fail the product
func TestSyncRegister_MismatchCounted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/html/reg_hum_act.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testListPage))
	})
	mux.HandleFunc("/html/h1507.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/20/1507", "Renamedmab", "examplamab")))
	})
	mux.HandleFunc("/html/h472.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/08/472", "Othervir", "othervir")))
	})

	service, _, _ := newTestEnv(t, mux)

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Products, "mismatched product still syncs")
	assert.Equal(t, 1, result.Mismatches)
}

// TestSyncRegister_Progress verifies the progress callback fires per product
func TestSyncRegister_Progress(t *testing.T) {
	service, _, _ := newTestEnv(t, registerSiteHandler())

	var mu sync.Mutex
	var calls []int
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, done)
		assert.Equal(t, 2, total)
	}

	_, err := service.SyncRegister(context.Background(), register.ActiveHuman, progress)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, calls, 2)
}

// TestSyncRegister_MaxPages verifies the pagination cap
func TestSyncRegister_MaxPages(t *testing.T) {
	service, _, _ := newTestEnv(t, registerSiteHandler())
	service.config.MaxPages = 0 // default: walk until 404

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pages)
}

// TestSyncRegister_TableFallback verifies list pages rendered as plain
// HTML tables still sync
func TestSyncRegister_TableFallback(t *testing.T) {
	tablePage := `<html><body><table>
	<tr><th>Number</th><th>Name</th><th>INN</th><th>Indication</th><th>Company</th></tr>
	<tr>
	  <td><a href="h472.htm">EU/1/08/472</a></td>
	  <td>Othervir</td><td>othervir</td><td>Plain indication</td><td>Other Labs GmbH</td>
	</tr>
	</table></body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/html/reg_hum_act.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tablePage))
	})
	mux.HandleFunc("/html/h472.htm", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage("EU/1/08/472", "Othervir", "othervir")))
	})

	service, st, _ := newTestEnv(t, mux)

	result, err := service.SyncRegister(context.Background(), register.ActiveHuman, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Products)
	_, err = st.GetProduct("EU/1/08/472")
	assert.NoError(t, err)
}
