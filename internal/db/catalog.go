package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/susu3304/epicgambler/internal/catalog"
)

func (db *DB) ListItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, description, price, payload, created_at FROM catalog_items ORDER BY id`,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Payload, &it.CreatedAt); err != nil {
			return nil, classify(err)
		}
		items = append(items, it)
	}
	return items, classify(rows.Err())
}

func (db *DB) AddItem(ctx context.Context, item catalog.NewItem) (catalog.Item, error) {
	created := catalog.Item{
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Payload:     item.Payload,
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO catalog_items (name, description, price, payload)
         VALUES ($1, $2, $3, $4)
         RETURNING id, created_at`,
		item.Name, item.Description, item.Price, item.Payload,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return catalog.Item{}, classify(err)
	}
	return created, nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (catalog.Item, error) {
	var it catalog.Item
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, description, price, payload, created_at FROM catalog_items WHERE id = $1`,
		id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Payload, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Item{}, catalog.ErrUnknownItem
	}
	if err != nil {
		return catalog.Item{}, classify(err)
	}
	return it, nil
}
