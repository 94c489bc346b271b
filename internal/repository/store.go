package repository

import (
	"context"
	"time"

	"github.com/projetocarbone/roma-backend/internal/model"
)

// UserStore is the credential store contract. Two implementations exist:
// UserRepo (MySQL) and MemoryUserStore (process-lifetime, used by the
// standalone mock variant and as a test double).
type UserStore interface {
	// Create inserts the user and fills in ID/CreatedAt/UpdatedAt.
	// Fails with ErrEmailExists when the email is already taken.
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	// UpdateProfile overwrites nome/telefone/empresa/cargo; empty strings
	// leave the current value in place.
	UpdateProfile(ctx context.Context, id uint64, nome, telefone, empresa, cargo string) (model.User, error)
	UpdateSettings(ctx context.Context, id uint64, notificacoes, autenticacao2FA, modoEscuro bool) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, senhaHash string) error
	UpdateAvatar(ctx context.Context, id uint64, url string) error
	// SetResetToken stores a pending password-reset token with its expiry.
	SetResetToken(ctx context.Context, id uint64, token string, expiry time.Time) error
	// GetByResetToken returns the owner of an unexpired reset token,
	// ErrExpired when the token exists but lapsed, ErrNotFound otherwise.
	GetByResetToken(ctx context.Context, token string) (model.User, error)
	// ResetPassword stores the new hash and clears the reset token fields.
	ResetPassword(ctx context.Context, id uint64, senhaHash string) error
}

// TokenStore persists refresh tokens by hash.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owning user of an active token hash.
	// ErrExpired for lapsed tokens, ErrNotFound for unknown or revoked ones.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ActivityStore is the append-only audit log.
type ActivityStore interface {
	Append(ctx context.Context, a *model.Activity) error
	// ListByUser returns a page of the user's activities, newest first,
	// along with the total count for pagination.
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Activity, int, error)
}

// CouponStore resolves seeded discount codes.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (model.Coupon, error)
	ListActive(ctx context.Context) ([]model.Coupon, error)
}
