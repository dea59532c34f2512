package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/postgres"
)

// Schema creates the tables DefaultQuery reads.
const Schema = `
CREATE TABLE IF NOT EXISTS foods (
    food_id  TEXT PRIMARY KEY,
    name     TEXT,
    c_type   TEXT,
    veg_non  TEXT,
    describe TEXT
);
CREATE TABLE IF NOT EXISTS ratings (
    food_id TEXT NOT NULL REFERENCES foods (food_id) ON DELETE CASCADE,
    rating  DOUBLE PRECISION NOT NULL
)`

// DefaultQuery reads foods with their mean rating.
const DefaultQuery = `
SELECT f.food_id, f.name, f.c_type, f.veg_non, f.describe, COALESCE(AVG(r.rating), 0), COUNT(r.rating) > 0
FROM foods f
LEFT JOIN ratings r ON r.food_id = f.food_id
GROUP BY f.food_id, f.name, f.c_type, f.veg_non, f.describe
ORDER BY f.food_id`

// LoadPostgres reads the collection with query, which must return
// food_id, name, category, diet, description, rating and rated columns.
// Nullable text columns are read as empty strings.
func LoadPostgres(ctx context.Context, db *sql.DB, query string) (*Collection, error) {
	if query == "" {
		query = DefaultQuery
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying foods: %w", err)
	}
	defer rows.Close()

	foods := make([]Food, 0)
	for rows.Next() {
		var (
			id, name, category, diet, describe sql.NullString
			rating                             sql.NullFloat64
			rated                              sql.NullBool
		)
		if err := rows.Scan(&id, &name, &category, &diet, &describe, &rating, &rated); err != nil {
			return nil, fmt.Errorf("scanning food row: %w", err)
		}
		foods = append(foods, Food{
			FoodID:      id.String,
			Name:        name.String,
			Category:    category.String,
			Diet:        diet.String,
			Description: describe.String,
			Rating:      rating.Float64,
			Rated:       rated.Bool,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating food rows: %w", err)
	}
	slog.Default().With("component", "dataset").Info("foods loaded from postgres", "count", len(foods))
	return NewCollection(foods), nil
}

// ImportPostgres replaces the contents of the foods and ratings tables with
// foods in one transaction. Each rated food gets a single ratings row holding
// its mean rating, so DefaultQuery reads back the same collection.
func ImportPostgres(ctx context.Context, client *postgres.Client, foods []Food) error {
	if _, err := client.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating dataset schema: %w", err)
	}
	return client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE foods CASCADE`); err != nil {
			return fmt.Errorf("truncating foods: %w", err)
		}
		insertFood, err := tx.PrepareContext(ctx,
			`INSERT INTO foods (food_id, name, c_type, veg_non, describe) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (food_id) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("preparing food insert: %w", err)
		}
		defer insertFood.Close()
		insertRating, err := tx.PrepareContext(ctx, `INSERT INTO ratings (food_id, rating) VALUES ($1, $2)`)
		if err != nil {
			return fmt.Errorf("preparing rating insert: %w", err)
		}
		defer insertRating.Close()

		seen := make(map[string]struct{}, len(foods))
		for _, f := range foods {
			if _, ok := seen[f.FoodID]; ok {
				continue
			}
			seen[f.FoodID] = struct{}{}
			if _, err := insertFood.ExecContext(ctx, f.FoodID, f.Name, f.Category, f.Diet, f.Description); err != nil {
				return fmt.Errorf("inserting food %s: %w", f.FoodID, err)
			}
			if !f.Rated {
				continue
			}
			if _, err := insertRating.ExecContext(ctx, f.FoodID, f.Rating); err != nil {
				return fmt.Errorf("inserting rating for %s: %w", f.FoodID, err)
			}
		}
		slog.Default().With("component", "dataset").Info("foods imported into postgres", "count", len(seen))
		return nil
	})
}
