package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aluiziolira/go-scrape-catalog/models"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	url TEXT PRIMARY KEY,
	name TEXT,
	price TEXT,
	old_price TEXT,
	article TEXT,
	manufacturer TEXT,
	availability TEXT,
	scraped_at DATETIME NOT NULL
);`

const upsertProduct = `
INSERT INTO products (url, name, price, old_price, article, manufacturer, availability, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	name = excluded.name,
	price = excluded.price,
	old_price = excluded.old_price,
	article = excluded.article,
	manufacturer = excluded.manufacturer,
	availability = excluded.availability,
	scraped_at = excluded.scraped_at`

// SQLiteWriter upserts products into a SQLite database keyed by URL, so
// repeated runs refresh existing rows. The database is opened on the first Write.
type SQLiteWriter struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteWriter prepares a SQLite writer for filename.
func NewSQLiteWriter(filename string) (*SQLiteWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	return &SQLiteWriter{path: filename}, nil
}

func (sw *SQLiteWriter) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", sw.path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, productsSchema); err != nil {
		_ = db.Close()
		return fmt.Errorf("create products table: %w", err)
	}
	sw.db = db
	return nil
}

// Write upserts products in a single transaction.
func (sw *SQLiteWriter) Write(products []*models.Product) error {
	if len(products) == 0 {
		return ErrNoRecords
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	ctx := context.Background()
	if sw.db == nil {
		if err := sw.open(ctx); err != nil {
			return err
		}
	}

	tx, err := sw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertProduct)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.URL, p.Name, p.Price, p.OldPrice, p.Article, p.Manufacturer, p.Availability, now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of stored products.
func (sw *SQLiteWriter) Count() (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.db == nil {
		return 0, nil
	}
	var n int
	if err := sw.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (sw *SQLiteWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.db == nil {
		return nil
	}
	return sw.db.Close()
}

// Validate ensures at least one product is stored.
func (sw *SQLiteWriter) Validate() error {
	n, err := sw.Count()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sqlite database %s has no products", sw.path)
	}
	return nil
}
