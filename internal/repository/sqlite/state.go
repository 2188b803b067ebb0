package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/catalog-watcher/internal/models"
	"github.com/Houeta/catalog-watcher/internal/repository"
)

// GetState implements repository.StateRepository.
func (r *Repository) GetState(ctx context.Context) (*models.State, error) {
	const opn = "repository.sqlite.GetState"

	// 1. Get the check counter and time
	var (
		lastChecked string
		totalChecks int
	)
	err := r.db.QueryRowContext(ctx, "SELECT last_checked, total_checks FROM watch_state WHERE id = 1").
		Scan(&lastChecked, &totalChecks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStateNotFound
		}
		return nil, fmt.Errorf("%s: failed to get watch state: %w", opn, err)
	}

	checkedAt, err := time.Parse(time.RFC3339Nano, lastChecked)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse last_checked %q: %w", opn, lastChecked, err)
	}

	// 2. Get all products in extraction order
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_code, name, color, price, price_numeric, url, image_url FROM products ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get products: %w", opn, err)
	}
	defer rows.Close()

	// 3. Scan every row to Product structure
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err = rows.Scan(&p.ProductCode, &p.Name, &p.Color, &p.Price, &p.PriceNumeric, &p.URL, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return &models.State{
		LastChecked: checkedAt,
		Products:    products,
		TotalChecks: totalChecks,
	}, nil
}

// UpdateState atomically replaces the snapshot using a transaction.
func (r *Repository) UpdateState(ctx context.Context, state *models.State) error {
	const opn = "repository.sqlite.UpdateState"

	// 1. begin transaction
	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a successful commit

	// 2. Update (or insert) the counter row.
	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO watch_state (id, last_checked, total_checks) VALUES (1, ?, ?)",
		state.LastChecked.UTC().Format(time.RFC3339Nano), state.TotalChecks)
	if err != nil {
		return fmt.Errorf("%s: failed to update watch state: %w", opn, err)
	}

	// 3. Completely clear the products table to record the new snapshot.
	_, err = tx.ExecContext(ctx, "DELETE FROM products")
	if err != nil {
		return fmt.Errorf("%s: failed to delete old products: %w", opn, err)
	}

	// 4. Preparing a request for the effective insertion of new products.
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO products (position, product_code, name, color, price, price_numeric, url, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare insert statement: %w", opn, err)
	}
	defer stmt.Close()

	// 5. Insert each product, keeping its position.
	for pos, p := range state.Products {
		_, err = stmt.ExecContext(ctx, pos, p.ProductCode, p.Name, p.Color, p.Price, p.PriceNumeric, p.URL, p.ImageURL)
		if err != nil {
			return fmt.Errorf("%s: failed to insert product with code %s: %w", opn, p.ProductCode, err)
		}
	}

	// 6. If all operations went through without errors - confirm the transaction.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}
