// Package idempotencyrepo stores idempotent request outcomes in Postgres so
// replays are honoured across processes and restarts.
package idempotencyrepo

import (
	"time"

	"orderflow/internal/core/domain/model/idempotency"
	"orderflow/internal/core/domain/model/kernel"
)

// RecordDTO is one claimed or completed request outcome.
type RecordDTO struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	TenantID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_idempotency_key,priority:1"`
	Route       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_idempotency_key,priority:2"`
	Token       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_idempotency_key,priority:3"`
	State       int       `gorm:"type:smallint;not null"`
	StatusCode  int       `gorm:"type:int;not null;default:0"`
	ContentType string    `gorm:"type:varchar(128);not null;default:''"`
	Body        []byte    `gorm:"type:bytea"`
	ExpiresAt   time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt   time.Time `gorm:"type:timestamptz"`
}

// TableName overrides GORM's default naming convention to use "idempotency_records".
func (RecordDTO) TableName() string {
	return "idempotency_records"
}

func toDomain(dto RecordDTO) (idempotency.Record, error) {
	tenant, err := kernel.NewTenantID(dto.TenantID)
	if err != nil {
		return idempotency.Record{}, err
	}
	return idempotency.Record{
		Key: idempotency.Key{
			Tenant: tenant,
			Route:  dto.Route,
			Token:  idempotency.Token(dto.Token),
		},
		State:       idempotency.State(dto.State),
		StatusCode:  dto.StatusCode,
		ContentType: dto.ContentType,
		Body:        dto.Body,
		ExpiresAt:   dto.ExpiresAt.UTC(),
	}, nil
}
