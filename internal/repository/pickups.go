package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// PickupTransitionFunc вычисляет новое состояние заявки по заблокированным в транзакции данным.
// owner равен nil, если владелец заявки не найден.
type PickupTransitionFunc func(p model.Pickup, stock model.CompostStock, owner *model.User) (lifecycle.PickupOutcome, error)

const pickupSelect = `SELECT p.id, p.owner_id, p.quantity, p.address, p.lat, p.lon, p.waste_type, p.phone,
	p.pickup_date, p.pickup_time, p.instructions, p.status, p.points_awarded, p.request_date, p.completed_date,
	u.id, u.name, u.email, u.phone
	FROM pickups p LEFT JOIN users u ON u.id = p.owner_id`

func scanPickup(row scanner) (*model.Pickup, error) {
	var (
		p                                  model.Pickup
		ownerID                            *string
		lat, lon                           *float64
		status                             string
		userID, userName, userEmail, phone *string
	)

	err := row.Scan(&p.ID, &ownerID, &p.Quantity, &p.Address, &lat, &lon, &p.WasteType, &p.Phone,
		&p.PickupDate, &p.PickupTime, &p.Instructions, &status, &p.PointsAwarded, &p.RequestDate, &p.CompletedDate,
		&userID, &userName, &userEmail, &phone)
	if err != nil {
		return nil, err
	}

	p.Status = model.PickupStatus(status)
	p.Coordinates = geoPoint(lat, lon)
	if ownerID != nil {
		p.OwnerID = *ownerID
	}
	p.Owner = userSummary(userID, userName, userEmail, phone)

	return &p, nil
}

func geoPoint(lat, lon *float64) *model.GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	return &model.GeoPoint{Lat: *lat, Lon: *lon}
}

func latLon(p *model.GeoPoint) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lon
}

func userSummary(id, name, email, phone *string) *model.UserSummary {
	if id == nil {
		return nil
	}
	s := &model.UserSummary{ID: *id}
	if name != nil {
		s.Name = *name
	}
	if email != nil {
		s.Email = *email
	}
	if phone != nil {
		s.Phone = *phone
	}
	return s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func summaryOf(u *model.User) *model.UserSummary {
	if u == nil {
		return nil
	}
	return &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// CreatePickup сохраняет новую заявку на вывоз.
func (r *PostgresRepository) CreatePickup(ctx context.Context, p model.Pickup) (*model.Pickup, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PickupStatusPending
	}

	lat, lon := latLon(p.Coordinates)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO pickups (id, owner_id, quantity, address, lat, lon, waste_type, phone,
		                      pickup_date, pickup_time, instructions, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING request_date`,
		p.ID, nullable(p.OwnerID), p.Quantity, p.Address, lat, lon, p.WasteType, p.Phone,
		p.PickupDate, p.PickupTime, p.Instructions, string(p.Status),
	).Scan(&p.RequestDate)
	if err != nil {
		return nil, fmt.Errorf("insert pickup: %w", err)
	}

	return &p, nil
}

// GetPickup возвращает заявку вместе с данными владельца.
func (r *PostgresRepository) GetPickup(ctx context.Context, id string) (*model.Pickup, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrPickupNotFound
	}

	p, err := scanPickup(r.pool.QueryRow(ctx, pickupSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPickupNotFound
		}
		return nil, fmt.Errorf("get pickup: %w", err)
	}
	return p, nil
}

// ListPickupsByOwner возвращает заявки пользователя, новые первыми.
func (r *PostgresRepository) ListPickupsByOwner(ctx context.Context, ownerID string) ([]model.Pickup, error) {
	return r.listPickups(ctx, pickupSelect+` WHERE p.owner_id = $1 ORDER BY p.request_date DESC`, ownerID)
}

// ListPickups возвращает все заявки с данными владельцев, новые первыми.
func (r *PostgresRepository) ListPickups(ctx context.Context) ([]model.Pickup, error) {
	return r.listPickups(ctx, pickupSelect+` ORDER BY p.request_date DESC`)
}

func (r *PostgresRepository) listPickups(ctx context.Context, query string, args ...any) ([]model.Pickup, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select pickups: %w", err)
	}
	defer rows.Close()

	res := make([]model.Pickup, 0)
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pickup: %w", err)
		}
		res = append(res, *p)
	}

	return res, rowsErr(rows)
}

// TransitionPickup блокирует заявку, её владельца и остаток компоста, применяет fn
// и сохраняет результат одной транзакцией. Запись заявки выполняется последней.
func (r *PostgresRepository) TransitionPickup(ctx context.Context, id string, fn PickupTransitionFunc) (lifecycle.PickupOutcome, error) {
	if uuid.Validate(id) != nil {
		return lifecycle.PickupOutcome{}, ErrPickupNotFound
	}

	var out lifecycle.PickupOutcome

	err := withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			current, err := scanPickup(tx.QueryRow(ctx, pickupSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrPickupNotFound
				}
				return fmt.Errorf("lock pickup: %w", err)
			}

			owner, err := lockUser(ctx, tx, current.OwnerID)
			if err != nil {
				return err
			}

			stock, err := readStock(ctx, tx)
			if err != nil {
				return err
			}

			out, err = fn(*current, stock, owner)
			if err != nil {
				return err
			}
			out.Pickup.Owner = summaryOf(owner)
			if out.NoOp {
				return nil
			}

			if out.StockChanged {
				if out.Stock, err = writeStock(ctx, tx, out.Stock); err != nil {
					return err
				}
			}

			if out.Owner != nil && out.PointsCredited != 0 {
				if err := updateUserPoints(ctx, tx, out.Owner.ID, out.Owner.RewardPoints); err != nil {
					return err
				}
			}

			if err := insertEvents(ctx, tx, out.Events); err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`UPDATE pickups SET status = $2, points_awarded = $3, completed_date = $4 WHERE id = $1`,
				id, string(out.Pickup.Status), out.Pickup.PointsAwarded, out.Pickup.CompletedDate,
			)
			if err != nil {
				return fmt.Errorf("update pickup: %w", err)
			}

			return nil
		})
	})
	if err != nil {
		return lifecycle.PickupOutcome{}, err
	}

	return out, nil
}
