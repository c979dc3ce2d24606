package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnistat/platform-server/internal/model"
)

func TestNewRepositories(t *testing.T) {
	db := &Connection{}

	users := NewUserRepository(db)
	assert.NotNil(t, users)
	assert.Equal(t, db, users.db)

	events := NewEventRepository(db)
	assert.NotNil(t, events)
	assert.Equal(t, db, events.db)

	metrics := NewMetricRepository(db)
	assert.NotNil(t, metrics)
	assert.Equal(t, db, metrics.db)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "deadline becomes timeout",
			err:  context.DeadlineExceeded,
			want: model.ErrTimeout,
		},
		{
			name: "wrapped deadline becomes timeout",
			err:  errors.Join(errors.New("query failed"), context.DeadlineExceeded),
			want: model.ErrTimeout,
		},
		{
			name: "business error passes through",
			err:  model.ErrNotFound,
			want: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestIsUniqueViolation_PlainError(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
