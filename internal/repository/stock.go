package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// readStock возвращает строку остатка, создавая её с нулевыми значениями при первом обращении.
func readStock(ctx context.Context, q querier) (model.CompostStock, error) {
	if _, err := q.Exec(ctx, `INSERT INTO compost_stock (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return model.CompostStock{}, fmt.Errorf("init compost stock: %w", err)
	}

	var s model.CompostStock
	err := q.QueryRow(ctx,
		`SELECT available, price_per_kg, version, updated_at FROM compost_stock WHERE id = 1`,
	).Scan(&s.Available, &s.PricePerKg, &s.Version, &s.UpdatedAt)
	if err != nil {
		return model.CompostStock{}, fmt.Errorf("select compost stock: %w", err)
	}

	return s, nil
}

// writeStock сохраняет остаток, если его версия не изменилась с момента чтения.
func writeStock(ctx context.Context, tx pgx.Tx, s model.CompostStock) (model.CompostStock, error) {
	err := tx.QueryRow(ctx,
		`UPDATE compost_stock
		 SET available = $1, price_per_kg = $2, version = version + 1, updated_at = now()
		 WHERE id = 1 AND version = $3
		 RETURNING version, updated_at`,
		s.Available, s.PricePerKg, s.Version,
	).Scan(&s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CompostStock{}, ErrStockConflict
		}
		return model.CompostStock{}, fmt.Errorf("update compost stock: %w", err)
	}
	return s, nil
}

// GetStock возвращает текущий остаток компоста и цену.
func (r *PostgresRepository) GetStock(ctx context.Context) (model.CompostStock, error) {
	return readStock(ctx, r.pool)
}

// UpdateStock применяет fn к текущему остатку и сохраняет результат по версии.
// При параллельном изменении транзакция повторяется с перечитанным остатком.
func (r *PostgresRepository) UpdateStock(ctx context.Context, fn func(model.CompostStock) (model.CompostStock, error)) (model.CompostStock, error) {
	var result model.CompostStock

	err := withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			current, err := readStock(ctx, tx)
			if err != nil {
				return err
			}

			next, err := fn(current)
			if err != nil {
				return err
			}
			next.Version = current.Version

			result, err = writeStock(ctx, tx, next)
			return err
		})
	})
	if err != nil {
		return model.CompostStock{}, err
	}

	return result, nil
}
