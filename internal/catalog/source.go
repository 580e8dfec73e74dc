package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
)

// Source streams a product catalog. fn is called once per product in
// source order; returning an error stops the scan.
type Source interface {
	Name() string
	Scan(ctx context.Context, fn func(Product) error) error
}

// JSONFileSource reads a JSON array of products from disk.
type JSONFileSource struct {
	Path string
}

func (s JSONFileSource) Name() string { return "file:" + s.Path }

func (s JSONFileSource) Scan(ctx context.Context, fn func(Product) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading catalog file %s: %w", s.Path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("catalog file %s: expected a JSON array", s.Path)
	}
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var p Product
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decoding product in %s: %w", s.Path, err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

const productsQuery = `SELECT id, name, brand, category, description FROM products ORDER BY id`

// SQLSource reads the products table through any database/sql driver.
// NULL optional columns become absent fields.
type SQLSource struct {
	DB    *sql.DB
	Label string
}

func (s SQLSource) Name() string { return s.Label }

func (s SQLSource) Scan(ctx context.Context, fn func(Product) error) error {
	rows, err := s.DB.QueryContext(ctx, productsQuery)
	if err != nil {
		return fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                            Product
			id                           int64
			brand, category, description sql.NullString
		)
		if err := rows.Scan(&id, &p.Name, &brand, &category, &description); err != nil {
			return fmt.Errorf("scanning product row: %w", err)
		}
		if id < 0 || id > int64(^uint32(0)) {
			return fmt.Errorf("product id %d out of range", id)
		}
		p.ID = uint32(id)
		p.Brand = brand.String
		p.Category = category.String
		p.Description = description.String
		if err := fn(p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating products: %w", err)
	}
	return nil
}
