package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/omnistat/platform-server/internal/model"
)

var _ model.MetricStore = (*MetricRepository)(nil)

type MetricRepository struct {
	db *Connection
}

func NewMetricRepository(db *Connection) *MetricRepository {
	return &MetricRepository{
		db: db,
	}
}

const metricColumns = `id, name, value, kind, user_id, service, endpoint, labels, recorded_at`

const insertMetricQuery = `INSERT INTO metrics (id, name, value, kind, user_id, service, endpoint, labels, recorded_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (r *MetricRepository) Create(ctx context.Context, metric model.Metric) (model.Metric, error) {
	query := insertMetricQuery + ` RETURNING ` + metricColumns

	var savedMetric model.Metric
	err := r.db.QueryRow(ctx, query,
		metric.ID, metric.Name, metric.Value, metric.Kind, metric.UserID,
		metric.Service, metric.Endpoint, metric.Labels, metric.RecordedAt,
	).Scan(
		&savedMetric.ID, &savedMetric.Name, &savedMetric.Value, &savedMetric.Kind,
		&savedMetric.UserID, &savedMetric.Service, &savedMetric.Endpoint,
		&savedMetric.Labels, &savedMetric.RecordedAt,
	)
	if err != nil {
		return model.Metric{}, fmt.Errorf("failed to create metric: %w", classify(err))
	}

	return savedMetric, nil
}

// CreateBatch persists all metrics inside one transaction. Either every
// metric lands or none does, so a failed batch is safe to retry.
func (r *MetricRepository) CreateBatch(ctx context.Context, metrics []model.Metric) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin batch transaction: %w", classify(err))
	}
	defer tx.Rollback(ctx)

	for i, metric := range metrics {
		_, err := tx.Exec(ctx, insertMetricQuery,
			metric.ID, metric.Name, metric.Value, metric.Kind, metric.UserID,
			metric.Service, metric.Endpoint, metric.Labels, metric.RecordedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert metric %d of batch: %w", i, classify(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", classify(err))
	}

	return len(metrics), nil
}

func (r *MetricRepository) List(ctx context.Context, filter model.MetricFilter) ([]model.Metric, error) {
	query := `SELECT ` + metricColumns + ` FROM metrics WHERE TRUE`
	args := make([]any, 0, 5)

	if filter.Name != "" {
		args = append(args, filter.Name)
		query += ` AND name = $` + strconv.Itoa(len(args))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += ` AND kind = $` + strconv.Itoa(len(args))
	}
	if filter.Service != "" {
		args = append(args, filter.Service)
		query += ` AND service = $` + strconv.Itoa(len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY recorded_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", classify(err))
	}
	defer rows.Close()

	var metrics []model.Metric
	for rows.Next() {
		var m model.Metric
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Value, &m.Kind, &m.UserID,
			&m.Service, &m.Endpoint, &m.Labels, &m.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", classify(err))
	}

	return metrics, nil
}
