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

// OrderTransitionFunc вычисляет новое состояние заказа по заблокированным в транзакции данным.
type OrderTransitionFunc func(o model.Order, stock model.CompostStock) (lifecycle.OrderOutcome, error)

const orderSelect = `SELECT o.id, o.farmer_id, o.compost_name, o.quantity, o.delivery_address, o.lat, o.lon,
	o.status, o.price_per_kg, o.total_amount, o.created_at,
	u.id, u.name, u.email, u.phone
	FROM orders o LEFT JOIN users u ON u.id = o.farmer_id`

func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                                  model.Order
		farmerID                           *string
		lat, lon                           *float64
		status                             string
		userID, userName, userEmail, phone *string
	)

	err := row.Scan(&o.ID, &farmerID, &o.CompostName, &o.Quantity, &o.DeliveryAddress, &lat, &lon,
		&status, &o.PricePerKg, &o.TotalAmount, &o.CreatedAt,
		&userID, &userName, &userEmail, &phone)
	if err != nil {
		return nil, err
	}

	o.Status = model.OrderStatus(status)
	o.Coordinates = geoPoint(lat, lon)
	if farmerID != nil {
		o.FarmerID = *farmerID
	}
	o.Farmer = userSummary(userID, userName, userEmail, phone)

	return &o, nil
}

// CreateOrder сохраняет новый заказ компоста.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}

	lat, lon := latLon(o.Coordinates)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (id, farmer_id, compost_name, quantity, delivery_address, lat, lon,
		                     status, price_per_kg, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		o.ID, nullable(o.FarmerID), o.CompostName, o.Quantity, o.DeliveryAddress, lat, lon,
		string(o.Status), o.PricePerKg, o.TotalAmount,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return &o, nil
}

// GetOrder возвращает заказ вместе с данными фермера.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrOrderNotFound
	}

	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOrdersByFarmer возвращает заказы фермера, новые первыми.
func (r *PostgresRepository) ListOrdersByFarmer(ctx context.Context, farmerID string) ([]model.Order, error) {
	return r.listOrders(ctx, orderSelect+` WHERE o.farmer_id = $1 ORDER BY o.created_at DESC`, farmerID)
}

// ListOrders возвращает все заказы с данными фермеров, новые первыми.
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

// ListOrdersWithoutCoordinates возвращает заказы, у которых не заданы координаты доставки.
func (r *PostgresRepository) ListOrdersWithoutCoordinates(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx, orderSelect+` WHERE o.lat IS NULL OR o.lon IS NULL ORDER BY o.created_at`)
}

func (r *PostgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	res := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, *o)
	}

	return res, rowsErr(rows)
}

// SetOrderCoordinates записывает координаты доставки, если они ещё не заданы.
// Возвращает false, если координаты уже были проставлены.
func (r *PostgresRepository) SetOrderCoordinates(ctx context.Context, id string, point model.GeoPoint) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET lat = $2, lon = $3 WHERE id = $1 AND (lat IS NULL OR lon IS NULL)`,
		id, point.Lat, point.Lon,
	)
	if err != nil {
		return false, fmt.Errorf("update order coordinates: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TransitionOrder блокирует заказ, читает остаток компоста, применяет fn и сохраняет
// результат одной транзакцией. Конфликт версии остатка приводит к повтору.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, id string, fn OrderTransitionFunc) (lifecycle.OrderOutcome, error) {
	if uuid.Validate(id) != nil {
		return lifecycle.OrderOutcome{}, ErrOrderNotFound
	}

	var out lifecycle.OrderOutcome

	err := withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx pgx.Tx) error {
			current, err := scanOrder(tx.QueryRow(ctx, orderSelect+` WHERE o.id = $1 FOR UPDATE OF o`, id))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return ErrOrderNotFound
				}
				return fmt.Errorf("lock order: %w", err)
			}

			stock, err := readStock(ctx, tx)
			if err != nil {
				return err
			}

			out, err = fn(*current, stock)
			if err != nil {
				return err
			}
			if out.NoOp {
				return nil
			}

			if out.StockChanged {
				if out.Stock, err = writeStock(ctx, tx, out.Stock); err != nil {
					return err
				}
			}

			if err := insertEvents(ctx, tx, out.Events); err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`UPDATE orders SET status = $2, price_per_kg = $3, total_amount = $4 WHERE id = $1`,
				id, string(out.Order.Status), out.Order.PricePerKg, out.Order.TotalAmount,
			)
			if err != nil {
				return fmt.Errorf("update order: %w", err)
			}

			return nil
		})
	})
	if err != nil {
		return lifecycle.OrderOutcome{}, err
	}

	return out, nil
}
