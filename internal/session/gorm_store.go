package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"authcore/internal/domain"
)

// GormStore persists the per-user refresh token slot in a relational table
// with one row per user. Replace is a single conditional UPDATE keyed on
// (user_id, token), so the database's row-level atomicity gives the
// compare-and-replace guarantee without explicit locking.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewGormStore creates a store over db. ttl is the refresh token lifetime;
// it only feeds the expires_at column used by the cleanup job, validity is
// decided by the token's own expiry claim.
func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{db: db, ttl: ttl}
}

func (s *GormStore) Put(ctx context.Context, userID int64, token string) error {
	now := time.Now().UTC()
	row := domain.SessionToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: put: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, userID int64) (string, bool, error) {
	var row domain.SessionToken
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get: %v", ErrStoreUnavailable, err)
	}
	return row.Token, true, nil
}

func (s *GormStore) IsCurrent(ctx context.Context, userID int64, token string) (bool, error) {
	current, ok, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return ok && current == token, nil
}

func (s *GormStore) Replace(ctx context.Context, userID int64, presented, next string) (bool, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&domain.SessionToken{}).
		Where("user_id = ? AND token = ?", userID, presented).
		Updates(map[string]any{
			"token":      next,
			"expires_at": now.Add(s.ttl),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: replace: %v", ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Clear(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.SessionToken{}).Error
	if err != nil {
		return fmt.Errorf("%w: clear: %v", ErrStoreUnavailable, err)
	}
	return nil
}
