package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

const userColumns = `id, name, email, phone, address, password_hash, role, reward_points, created_at`

func scanUser(row scanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.PasswordHash, &role, &u.RewardPoints, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// CreateUser создаёт нового пользователя. E-mail должен быть уже нормализован.
func (r *PostgresRepository) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, phone, address, password_hash, role, reward_points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Phone, u.Address, u.PasswordHash, string(u.Role), u.RewardPoints,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, u.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// GetUserByEmail возвращает пользователя по e-mail.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrUserNotFound
	}

	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpsertAdmin создаёт администратора или повышает до администратора существующего
// пользователя с тем же e-mail, обновляя пароль. Возвращает true, если запись создана.
func (r *PostgresRepository) UpsertAdmin(ctx context.Context, u model.User) (bool, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, phone, address, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6, 'admin')
		 ON CONFLICT (email) DO UPDATE
		 SET role = 'admin', name = EXCLUDED.name, password_hash = EXCLUDED.password_hash
		 RETURNING (xmax = 0)`,
		u.ID, u.Name, u.Email, u.Phone, u.Address, u.PasswordHash,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert admin: %w", err)
	}

	return inserted, nil
}

// lockUser блокирует строку пользователя до конца транзакции.
// Отсутствующий пользователь возвращается как nil без ошибки.
func lockUser(ctx context.Context, tx pgx.Tx, id string) (*model.User, error) {
	if id == "" {
		return nil, nil
	}

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

func updateUserPoints(ctx context.Context, tx pgx.Tx, id string, points int64) error {
	_, err := tx.Exec(ctx, `UPDATE users SET reward_points = $2 WHERE id = $1`, id, points)
	if err != nil {
		return fmt.Errorf("update reward points: %w", err)
	}
	return nil
}
