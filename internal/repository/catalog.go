package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

const inventoryColumns = `id, name, category, price_per_kg, stock, image, created_at, updated_at`

func scanInventoryItem(row scanner) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.PricePerKg, &it.Stock, &it.Image, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListInventory возвращает каталог продукции, новые позиции первыми.
func (r *PostgresRepository) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	defer rows.Close()

	res := make([]model.InventoryItem, 0)
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		res = append(res, *it)
	}

	return res, rowsErr(rows)
}

// CreateInventoryItem добавляет позицию в каталог.
func (r *PostgresRepository) CreateInventoryItem(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}

	created, err := scanInventoryItem(r.pool.QueryRow(ctx,
		`INSERT INTO inventory_items (id, name, category, price_per_kg, stock, image)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+inventoryColumns,
		it.ID, it.Name, it.Category, it.PricePerKg, it.Stock, it.Image,
	))
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	return created, nil
}

// UpdateInventoryItem блокирует позицию, применяет к ней fn и сохраняет результат.
func (r *PostgresRepository) UpdateInventoryItem(ctx context.Context, id string, fn func(*model.InventoryItem) error) (*model.InventoryItem, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrItemNotFound
	}

	var updated *model.InventoryItem
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		it, err := scanInventoryItem(tx.QueryRow(ctx,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrItemNotFound
			}
			return fmt.Errorf("lock inventory item: %w", err)
		}

		if err := fn(it); err != nil {
			return err
		}

		updated, err = scanInventoryItem(tx.QueryRow(ctx,
			`UPDATE inventory_items
			 SET name = $2, category = $3, price_per_kg = $4, stock = $5, image = $6, updated_at = now()
			 WHERE id = $1
			 RETURNING `+inventoryColumns,
			id, it.Name, it.Category, it.PricePerKg, it.Stock, it.Image,
		))
		if err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteInventoryItem удаляет позицию каталога.
func (r *PostgresRepository) DeleteInventoryItem(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrItemNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

const rewardColumns = `id, title, points, description, image, created_at, updated_at`

func scanReward(row scanner) (*model.Reward, error) {
	var rw model.Reward
	err := row.Scan(&rw.ID, &rw.Title, &rw.Points, &rw.Description, &rw.Image, &rw.CreatedAt, &rw.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// ListRewards возвращает каталог наград, новые первыми.
func (r *PostgresRepository) ListRewards(ctx context.Context) ([]model.Reward, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+rewardColumns+` FROM rewards ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select rewards: %w", err)
	}
	defer rows.Close()

	res := make([]model.Reward, 0)
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		res = append(res, *rw)
	}

	return res, rowsErr(rows)
}

// GetReward возвращает награду по идентификатору.
func (r *PostgresRepository) GetReward(ctx context.Context, id string) (*model.Reward, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrRewardNotFound
	}

	rw, err := scanReward(r.pool.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return rw, nil
}

// CreateReward добавляет награду в каталог.
func (r *PostgresRepository) CreateReward(ctx context.Context, rw model.Reward) (*model.Reward, error) {
	if rw.ID == "" {
		rw.ID = uuid.NewString()
	}

	created, err := scanReward(r.pool.QueryRow(ctx,
		`INSERT INTO rewards (id, title, points, description, image)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+rewardColumns,
		rw.ID, rw.Title, rw.Points, rw.Description, rw.Image,
	))
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	return created, nil
}

// UpdateReward блокирует награду, применяет к ней fn и сохраняет результат.
func (r *PostgresRepository) UpdateReward(ctx context.Context, id string, fn func(*model.Reward) error) (*model.Reward, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrRewardNotFound
	}

	var updated *model.Reward
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		rw, err := scanReward(tx.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRewardNotFound
			}
			return fmt.Errorf("lock reward: %w", err)
		}

		if err := fn(rw); err != nil {
			return err
		}

		updated, err = scanReward(tx.QueryRow(ctx,
			`UPDATE rewards
			 SET title = $2, points = $3, description = $4, image = $5, updated_at = now()
			 WHERE id = $1
			 RETURNING `+rewardColumns,
			id, rw.Title, rw.Points, rw.Description, rw.Image,
		))
		if err != nil {
			return fmt.Errorf("update reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteReward удаляет награду. Уже выполненные обмены сохраняют её название и стоимость.
func (r *PostgresRepository) DeleteReward(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrRewardNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRewardNotFound
	}
	return nil
}
