package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

func insertEvents(ctx context.Context, tx pgx.Tx, events []model.StatusEvent) error {
	for _, e := range events {
		_, err := tx.Exec(ctx,
			`INSERT INTO status_events (aggregate, aggregate_id, from_status, to_status, actor_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			string(e.Aggregate), e.AggregateID, e.FromStatus, e.ToStatus, e.ActorID, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert status event: %w", err)
		}
	}
	return nil
}

// ListStatusEvents возвращает журнал переходов агрегата в порядке применения.
func (r *PostgresRepository) ListStatusEvents(ctx context.Context, aggregate model.Aggregate, id string) ([]model.StatusEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT aggregate, aggregate_id, from_status, to_status, actor_id, created_at
		 FROM status_events
		 WHERE aggregate = $1 AND aggregate_id = $2
		 ORDER BY id`,
		string(aggregate), id,
	)
	if err != nil {
		return nil, fmt.Errorf("select status events: %w", err)
	}
	defer rows.Close()

	var res []model.StatusEvent
	for rows.Next() {
		var (
			e   model.StatusEvent
			agg string
		)
		if err := rows.Scan(&agg, &e.AggregateID, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		e.Aggregate = model.Aggregate(agg)
		res = append(res, e)
	}

	return res, rowsErr(rows)
}
