package idempotencyrepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/idempotency"
	"orderflow/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormIdempotencyStore implements ports.IdempotencyStore. The unique index
// on (tenant_id, route, token) decides which request owns a key.
type GormIdempotencyStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormIdempotencyStore(db *gorm.DB, now func() time.Time) *GormIdempotencyStore {
	if now == nil {
		now = time.Now
	}
	return &GormIdempotencyStore{db: db, now: now}
}

func (s *GormIdempotencyStore) byKey(ctx context.Context, key idempotency.Key) *gorm.DB {
	return s.db.WithContext(ctx).Where("tenant_id = ? AND route = ? AND token = ?",
		key.Tenant.String(), key.Route, key.Token.String())
}

// Claim inserts a pending row. On a unique violation it returns the live
// row instead; an expired row is deleted and the insert retried once.
func (s *GormIdempotencyStore) Claim(
	ctx context.Context,
	key idempotency.Key,
	ttl time.Duration,
) (idempotency.Record, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		now := s.now().UTC()
		dto := RecordDTO{
			TenantID:  key.Tenant.String(),
			Route:     key.Route,
			Token:     key.Token.String(),
			State:     int(idempotency.Pending),
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}

		err := s.db.WithContext(ctx).Create(&dto).Error
		if err == nil {
			rec, convErr := toDomain(dto)
			return rec, true, convErr
		}
		if !isUniqueViolation(err) {
			return idempotency.Record{}, false, err
		}

		var existing RecordDTO
		if err = s.byKey(ctx, key).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return idempotency.Record{}, false, err
		}
		if existing.ExpiresAt.After(now) {
			rec, convErr := toDomain(existing)
			return rec, false, convErr
		}
		if err = s.db.WithContext(ctx).
			Where("id = ? AND expires_at <= ?", existing.ID, now).
			Delete(&RecordDTO{}).Error; err != nil {
			return idempotency.Record{}, false, err
		}
	}
	return idempotency.Record{}, false, errs.NewConflictError("idempotency key " + key.String())
}

// Complete stores the response on the pending row.
func (s *GormIdempotencyStore) Complete(
	ctx context.Context,
	key idempotency.Key,
	statusCode int,
	contentType string,
	body []byte,
) error {
	result := s.byKey(ctx, key).
		Model(&RecordDTO{}).
		Where("state = ?", int(idempotency.Pending)).
		Updates(map[string]any{
			"state":        int(idempotency.Completed),
			"status_code":  statusCode,
			"content_type": contentType,
			"body":         body,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("pending idempotency record", key.String())
	}
	return nil
}

// Release deletes a pending row so the client may retry with the same token.
func (s *GormIdempotencyStore) Release(ctx context.Context, key idempotency.Key) error {
	return s.byKey(ctx, key).
		Where("state = ?", int(idempotency.Pending)).
		Delete(&RecordDTO{}).Error
}

func (s *GormIdempotencyStore) Find(ctx context.Context, key idempotency.Key) (idempotency.Record, error) {
	var dto RecordDTO
	err := s.byKey(ctx, key).Where("expires_at > ?", s.now().UTC()).First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return idempotency.Record{}, errs.NewObjectNotFoundError("idempotency record", key.String())
	}
	if err != nil {
		return idempotency.Record{}, err
	}
	return toDomain(dto)
}

func (s *GormIdempotencyStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&RecordDTO{})
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
