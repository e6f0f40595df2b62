package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "x"))

	err := translate(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), "Complaint not found")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.EqualError(t, err, "Complaint not found")

	err = translate(&pgconn.PgError{Code: "23505", Message: "duplicate key value"}, "")
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	badID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	err = translate(fmt.Errorf("query: %w", badID), "Complaint not found")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.EqualError(t, err, "Complaint not found")

	err = translate(badID, "")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	err = translate(gorm.ErrDuplicatedKey, "")
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	raw := errors.New("connection reset by peer")
	err = translate(raw, "")
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
	assert.ErrorIs(t, err, raw)
}

func TestStatsCache_DisabledWithoutRedis(t *testing.T) {
	s := NewStorageService(nil, nil, nil)
	ctx := context.Background()

	s.storeStats(ctx, &models.ComplaintStats{Total: 3})
	s.invalidateStats(ctx)
	_, ok := s.cachedStats(ctx)

	assert.False(t, ok)
	assert.NotNil(t, s.Logger)
}
