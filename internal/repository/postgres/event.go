package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/omnistat/platform-server/internal/model"
)

var _ model.EventStore = (*EventRepository)(nil)

type EventRepository struct {
	db *Connection
}

func NewEventRepository(db *Connection) *EventRepository {
	return &EventRepository{
		db: db,
	}
}

func (r *EventRepository) Create(ctx context.Context, event model.Event) (model.Event, error) {
	query := `INSERT INTO events (id, user_id, type, normalized, value, metadata, recorded_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, user_id, type, normalized, value::text, metadata, recorded_at`

	var (
		savedEvent model.Event
		value      string
	)
	err := r.db.QueryRow(ctx, query,
		event.ID, event.UserID, event.Type, event.Normalized,
		event.Value, event.Metadata, event.RecordedAt,
	).Scan(
		&savedEvent.ID, &savedEvent.UserID, &savedEvent.Type, &savedEvent.Normalized,
		&value, &savedEvent.Metadata, &savedEvent.RecordedAt,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to create event: %w", classify(err))
	}

	savedEvent.Value, err = decimal.NewFromString(value)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to parse event value: %w", err)
	}

	return savedEvent, nil
}

// UsageTotals aggregates one user's events by type over [from, to].
// Cost values are summed as exact decimals on the database side.
func (r *EventRepository) UsageTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) (model.UsageTotals, error) {
	query := `SELECT type, COUNT(*), COALESCE(SUM(value), 0)::text
			  FROM events
			  WHERE user_id = $1 AND normalized AND recorded_at >= $2 AND recorded_at <= $3
			  GROUP BY type`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return model.UsageTotals{}, fmt.Errorf("failed to query usage totals: %w", classify(err))
	}
	defer rows.Close()

	totals := model.UsageTotals{TotalCost: decimal.Zero}
	for rows.Next() {
		var (
			eventType string
			count     int64
			sum       string
		)
		if err := rows.Scan(&eventType, &count, &sum); err != nil {
			return model.UsageTotals{}, fmt.Errorf("failed to scan usage totals: %w", err)
		}

		switch eventType {
		case model.EventTypeAPICall:
			totals.APICalls = count
		case model.EventTypeToolExecution:
			totals.ToolExecutions = count
		case model.EventTypeSession:
			totals.Sessions = count
		case model.EventTypeCost:
			cost, err := decimal.NewFromString(sum)
			if err != nil {
				return model.UsageTotals{}, fmt.Errorf("failed to parse cost total: %w", err)
			}
			totals.TotalCost = cost
		}
	}
	if err := rows.Err(); err != nil {
		return model.UsageTotals{}, fmt.Errorf("failed to read usage totals: %w", classify(err))
	}

	return totals, nil
}

func (r *EventRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM events WHERE recorded_at >= $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", classify(err))
	}

	return count, nil
}

func (r *EventRepository) CountByTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM events WHERE type = $1 AND recorded_at >= $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, eventType, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events by type: %w", classify(err))
	}

	return count, nil
}

func (r *EventRepository) DistinctUsersSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(DISTINCT user_id) FROM events WHERE recorded_at >= $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct users: %w", classify(err))
	}

	return count, nil
}

// PeakUsageHour returns the hour of day (0-23) with the most events since
// the given time, or nil when there are no events at all.
func (r *EventRepository) PeakUsageHour(ctx context.Context, since time.Time) (*int, error) {
	const query = `SELECT EXTRACT(HOUR FROM recorded_at AT TIME ZONE 'UTC')::int AS hour, COUNT(*) AS cnt
				   FROM events
				   WHERE recorded_at >= $1
				   GROUP BY hour
				   ORDER BY cnt DESC, hour ASC
				   LIMIT 1`

	var (
		hour  int
		count int64
	)
	err := r.db.QueryRow(ctx, query, since).Scan(&hour, &count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query peak usage hour: %w", classify(err))
	}

	return &hour, nil
}

func (r *EventRepository) CostByUserSince(ctx context.Context, since time.Time) ([]model.UserCost, error) {
	query := `SELECT user_id,
			         COALESCE(SUM(CASE WHEN type = $1 THEN value ELSE 0 END), 0)::text,
			         COUNT(CASE WHEN type = $2 THEN 1 END)
			  FROM events
			  WHERE recorded_at >= $3
			  GROUP BY user_id
			  ORDER BY user_id`

	rows, err := r.db.Query(ctx, query, model.EventTypeCost, model.EventTypeAPICall, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost by user: %w", classify(err))
	}
	defer rows.Close()

	var costs []model.UserCost
	for rows.Next() {
		var (
			uc  model.UserCost
			sum string
		)
		if err := rows.Scan(&uc.UserID, &sum, &uc.APICalls); err != nil {
			return nil, fmt.Errorf("failed to scan user cost: %w", err)
		}
		uc.TotalCost, err = decimal.NewFromString(sum)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user cost: %w", err)
		}
		costs = append(costs, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user costs: %w", classify(err))
	}

	return costs, nil
}
