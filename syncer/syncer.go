// Package syncer walks a register listing, fetches every product page and
// persists the parsed records. Parsing lives in the register package;
// network access goes through the fetch client, so a warm cache makes a
// full sync run offline.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ematools/fetch"
	"ematools/register"
	"ematools/store"
)

// Config holds syncer settings.
type Config struct {
	// BaseURL of the community register site.
	BaseURL string
	// Concurrency is the number of product pages fetched in parallel.
	Concurrency int
	// FetchTimeout bounds each product page fetch.
	FetchTimeout time.Duration
	// MaxPages caps list pagination. Zero means no cap.
	MaxPages int
	// Force bypasses the response cache.
	Force bool
}

// DefaultConfig returns the default syncer configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      register.DefaultBaseURL,
		Concurrency:  5,
		FetchTimeout: 60 * time.Second,
	}
}

// SyncError records a per-product failure. Product failures do not abort a
// sync run.
type SyncError struct {
	EUNumber string
	Err      error
}

// Result summarizes a sync run.
type Result struct {
	Pages          int
	Products       int
	ProductsFailed int
	Procedures     int
	Mismatches     int
	Errors         []SyncError
}

// ProgressFunc is called after each product finishes, with the number of
// products done so far and the total.
type ProgressFunc func(done, total int)

// Syncer orchestrates the fetch -> parse -> store pipeline.
type Syncer struct {
	client *fetch.Client
	store  *store.Store
	config *Config
}

// New creates a syncer.
func New(client *fetch.Client, st *store.Store, config *Config) *Syncer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Syncer{
		client: client,
		store:  st,
		config: config,
	}
}

// SyncRegister fetches the full register listing and every product page,
// storing products and procedures. progress may be nil.
func (s *Syncer) SyncRegister(ctx context.Context, reg register.Register, progress ProgressFunc) (*Result, error) {
	result := &Result{}

	products, pages, err := s.fetchListing(ctx, reg)
	if err != nil {
		return nil, err
	}
	result.Pages = pages

	slog.Info("register listing fetched", "register", reg.Key, "pages", pages, "products", len(products))

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		done      int
		semaphore = make(chan struct{}, s.config.Concurrency)
	)

	for _, product := range products {
		select {
		case <-ctx.Done():
			wg.Wait()
			return result, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(p register.Product) {
			defer wg.Done()
			defer func() { <-semaphore }()

			procCount, mismatch, err := s.syncProduct(ctx, reg, p)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				result.ProductsFailed++
				result.Errors = append(result.Errors, SyncError{EUNumber: p.EUNumber, Err: err})
			} else {
				result.Products++
				result.Procedures += procCount
			}
			if mismatch {
				result.Mismatches++
			}
			if progress != nil {
				progress(done, len(products))
			}
		}(product)
	}

	wg.Wait()
	return result, nil
}

// fetchListing walks the paginated list pages until one is missing or
// carries no dataSet, and returns the deduplicated products.
func (s *Syncer) fetchListing(ctx context.Context, reg register.Register) ([]register.Product, int, error) {
	var all []register.Product
	pages := 0

	for page := 1; s.config.MaxPages == 0 || page <= s.config.MaxPages; page++ {
		url := reg.ListPageURL(s.config.BaseURL, page)

		body, err := s.client.Get(ctx, url, s.config.Force)
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			slog.Debug("stopped traversing listing", "page", page, "status", statusErr.StatusCode)
			break
		}
		if err != nil {
			return nil, pages, fmt.Errorf("failed to fetch list page %d: %w", page, err)
		}

		products, err := register.ParseListPage(body, reg)
		if errors.Is(err, register.ErrNoDataSet) {
			// Some register variants render plain tables instead of the
			// dataSet script.
			products, err = register.ParseListTable(body, reg)
			if err == nil && len(products) == 0 {
				slog.Debug("no dataSet or table rows on page", "page", page)
				break
			}
		}
		if err != nil {
			return nil, pages, fmt.Errorf("failed to parse list page %d: %w", page, err)
		}

		all = append(all, products...)
		pages++
	}

	return register.DedupeProducts(all), pages, nil
}

// syncProduct fetches one product page, merges its information into the
// list row and stores the product with its procedures. A list/page
// mismatch is logged and reported but does not fail the product.
func (s *Syncer) syncProduct(ctx context.Context, reg register.Register, p register.Product) (procCount int, mismatch bool, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	pageReg := reg
	if p.Prefix != "" {
		pageReg.Prefix = p.Prefix
	}
	url := pageReg.ProductPageURL(s.config.BaseURL, p.ID)

	body, err := s.client.Get(fetchCtx, url, s.config.Force)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch product page: %w", err)
	}

	info, err := register.ParseProductInfo(body)
	if err != nil && !errors.Is(err, register.ErrNoDataSet) {
		return 0, false, fmt.Errorf("failed to parse product page: %w", err)
	}

	if info != nil {
		if err := register.VerifyListConsistency(p, info); err != nil {
			var mismatchErr *register.MismatchError
			if errors.As(err, &mismatchErr) {
				slog.Warn("list and product page disagree",
					"eu_number", mismatchErr.EUNumber,
					"field", mismatchErr.Field,
					"list", mismatchErr.ListValue,
					"page", mismatchErr.PageValue,
				)
				mismatch = true
			}
		}
		register.ApplyProductInfo(&p, info)
	}

	procedures, err := register.ParseProcedures(body, p.EUNumber, s.config.BaseURL)
	if err != nil {
		return 0, mismatch, fmt.Errorf("failed to parse procedures: %w", err)
	}

	if err := s.store.UpsertProduct(p); err != nil {
		return 0, mismatch, err
	}
	if err := s.store.ReplaceProcedures(p.EUNumber, procedures); err != nil {
		return 0, mismatch, err
	}

	return len(procedures), mismatch, nil
}
