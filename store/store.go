package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ematools/register"
)

// ErrProductNotFound is returned when a product lookup matches nothing.
var ErrProductNotFound = errors.New("product not found")

// Store persists parsed register records in SQLite. It doubles as the
// parsed-result cache: a completed sync writes here and the exporters read
// from here without touching the network.
type Store struct {
	db *sql.DB
}

// ProductFilter narrows ListProducts results.
type ProductFilter struct {
	Register *string // filter by register key ("active", "withdrawn")
	Company  *string // case-insensitive substring match on company
	Limit    int     // pagination limit, 0 means no limit
	Offset   int     // pagination offset
}

// NewStore opens (creating if necessary) a register store.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		eu_number TEXT PRIMARY KEY,
		prefix TEXT NOT NULL,
		product_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		inn TEXT,
		indication TEXT,
		company TEXT,
		mah TEXT,
		atc_codes TEXT,
		ema_links TEXT,
		register TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS procedures (
		eu_number TEXT NOT NULL,
		procedure_id TEXT NOT NULL,
		close_date TEXT,
		procedure_type TEXT,
		ema_number TEXT,
		decision_number TEXT,
		decision_date TEXT,
		decision_url TEXT,
		annex_url TEXT,
		PRIMARY KEY (eu_number, procedure_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertProduct inserts or replaces a product record.
func (s *Store) UpsertProduct(p register.Product) error {
	query := `
		INSERT OR REPLACE INTO products (
			eu_number, prefix, product_id, name, inn, indication,
			company, mah, atc_codes, ema_links, register, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		p.EUNumber,
		p.Prefix,
		p.ID,
		p.Name,
		p.INN,
		p.Indication,
		p.Company,
		p.MAH,
		strings.Join(p.ATCCodes, ";"),
		strings.Join(p.EMALinks, ";"),
		p.Register,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.EUNumber, err)
	}
	return nil
}

// ReplaceProcedures replaces the stored procedures of a product with the
// given set, in one transaction.
func (s *Store) ReplaceProcedures(euNumber string, procedures []register.Procedure) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM procedures WHERE eu_number = ?", euNumber); err != nil {
		return fmt.Errorf("failed to clear procedures for %s: %w", euNumber, err)
	}

	query := `
		INSERT INTO procedures (
			eu_number, procedure_id, close_date, procedure_type,
			ema_number, decision_number, decision_date, decision_url, annex_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, proc := range procedures {
		_, err := tx.Exec(query,
			proc.EUNumber,
			proc.ProcedureID,
			formatDate(proc.CloseDate),
			proc.Type,
			proc.EMANumber,
			proc.DecisionNumber,
			formatDate(proc.DecisionDate),
			proc.DecisionURL,
			proc.AnnexURL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert procedure %s/%s: %w",
				proc.EUNumber, proc.ProcedureID, err)
		}
	}

	return tx.Commit()
}

// GetProduct retrieves a product by EU number.
func (s *Store) GetProduct(euNumber string) (*register.Product, error) {
	row := s.db.QueryRow(`
		SELECT eu_number, prefix, product_id, name, inn, indication,
		       company, mah, atc_codes, ema_links, register
		FROM products WHERE eu_number = ?
	`, euNumber)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// ListProducts returns products matching the filter, ordered by EU number.
func (s *Store) ListProducts(filter ProductFilter) ([]register.Product, error) {
	query := `
		SELECT eu_number, prefix, product_id, name, inn, indication,
		       company, mah, atc_codes, ema_links, register
		FROM products
	`
	var conditions []string
	var args []any

	if filter.Register != nil {
		conditions = append(conditions, "register = ?")
		args = append(args, *filter.Register)
	}
	if filter.Company != nil {
		conditions = append(conditions, "LOWER(company) LIKE ?")
		args = append(args, "%"+strings.ToLower(*filter.Company)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY eu_number"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []register.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}

	return products, rows.Err()
}

// CountProducts returns the number of stored products.
func (s *Store) CountProducts() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// ListProcedures returns the stored procedures of one product, ordered by
// close date descending (most recent first, undated last).
func (s *Store) ListProcedures(euNumber string) ([]register.Procedure, error) {
	return s.queryProcedures(`
		SELECT eu_number, procedure_id, close_date, procedure_type,
		       ema_number, decision_number, decision_date, decision_url, annex_url
		FROM procedures WHERE eu_number = ?
		ORDER BY close_date IS NULL, close_date DESC
	`, euNumber)
}

// AllProcedures returns every stored procedure, grouped by product.
func (s *Store) AllProcedures() (map[string][]register.Procedure, error) {
	procedures, err := s.queryProcedures(`
		SELECT eu_number, procedure_id, close_date, procedure_type,
		       ema_number, decision_number, decision_date, decision_url, annex_url
		FROM procedures
		ORDER BY eu_number, procedure_id
	`)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]register.Procedure)
	for _, proc := range procedures {
		grouped[proc.EUNumber] = append(grouped[proc.EUNumber], proc)
	}
	return grouped, nil
}

func (s *Store) queryProcedures(query string, args ...any) ([]register.Procedure, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query procedures: %w", err)
	}
	defer rows.Close()

	var procedures []register.Procedure
	for rows.Next() {
		var proc register.Procedure
		var closeDate, decisionDate sql.NullString

		err := rows.Scan(
			&proc.EUNumber,
			&proc.ProcedureID,
			&closeDate,
			&proc.Type,
			&proc.EMANumber,
			&proc.DecisionNumber,
			&decisionDate,
			&proc.DecisionURL,
			&proc.AnnexURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procedure row: %w", err)
		}

		proc.CloseDate = parseDate(closeDate)
		proc.DecisionDate = parseDate(decisionDate)
		procedures = append(procedures, proc)
	}

	return procedures, rows.Err()
}

func scanProduct(row interface{ Scan(...any) error }) (*register.Product, error) {
	var p register.Product
	var inn, indication, company, mah, atcCodes, emaLinks sql.NullString

	err := row.Scan(
		&p.EUNumber,
		&p.Prefix,
		&p.ID,
		&p.Name,
		&inn,
		&indication,
		&company,
		&mah,
		&atcCodes,
		&emaLinks,
		&p.Register,
	)
	if err != nil {
		return nil, err
	}

	p.INN = inn.String
	p.Indication = indication.String
	p.Company = company.String
	p.MAH = mah.String
	p.ATCCodes = splitJoined(atcCodes.String)
	p.EMALinks = splitJoined(emaLinks.String)

	return &p, nil
}

func splitJoined(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(register.DateLayout)
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(register.DateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
