// Package auth maps opaque session tokens to users and gates privileged
// operations by role. Every lookup goes to the database; nothing is cached.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thai-travel-portal/internal/apperr"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenLength = 48

// Store persists sessions in the app_sessions table.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Store{db: db, ttl: ttl, log: log, now: time.Now}
}

// TTL is the lifetime given to new sessions.
func (s *Store) TTL() time.Duration { return s.ttl }

// CreateSession stores a new session for userID and returns its token.
func (s *Store) CreateSession(ctx context.Context, userID uint) (string, error) {
	token, err := util.RandomString(tokenLength)
	if err != nil {
		return "", apperr.Upstream("generate session token", err)
	}
	sess := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", apperr.Upstream("create session", err)
	}
	return token, nil
}

// ResolveCurrentUser returns the owner of a live session, or nil when the
// token is empty, unknown or expired. Lookup errors are logged and reported
// as nil so a failure never grants access.
func (s *Store) ResolveCurrentUser(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	var sess models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND expires_at > ?", token, s.now()).
		First(&sess).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("resolve session failed", zap.Error(err))
		}
		return nil
	}
	if sess.Expired(s.now()) || sess.User.ID == 0 {
		return nil
	}
	return &sess.User
}

// RequireRole resolves token and checks that its user has role.
// It returns apperr.ErrUnauthenticated without a live session and
// apperr.ErrForbidden for any other role.
func (s *Store) RequireRole(ctx context.Context, token, role string) (*models.User, error) {
	user := s.ResolveCurrentUser(ctx, token)
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if user.Role != role {
		return nil, apperr.ErrForbidden
	}
	return user, nil
}

// DestroySession deletes the session. A missing row is not an error.
func (s *Store) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return apperr.Upstream("destroy session", err)
	}
	return nil
}

// DestroyUserSessions logs a user out everywhere.
func (s *Store) DestroyUserSessions(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return apperr.Upstream("destroy user sessions", err)
	}
	return nil
}

// PurgeExpired removes sessions that can no longer resolve.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunSweeper purges expired sessions every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.log.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
