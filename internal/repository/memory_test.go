package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projetocarbone/roma-backend/internal/model"
)

func TestMemoryUserStoreCreateAndDuplicate(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	u := model.User{Nome: "Ana", Email: "Ana@Example.com", SenhaHash: "hash"}
	require.NoError(t, s.Create(ctx, &u))
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)

	dup := model.User{Nome: "Outra", Email: "ana@example.com", SenhaHash: "hash"}
	assert.ErrorIs(t, s.Create(ctx, &dup), ErrEmailExists)

	got, err := s.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserStoreUpdateProfileKeepsEmptyFields(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	u := model.User{Nome: "Ana", Email: "ana@example.com", Telefone: "11 99999-0000"}
	require.NoError(t, s.Create(ctx, &u))

	got, err := s.UpdateProfile(ctx, u.ID, "Ana Silva", "", "Carbone", "")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", got.Nome)
	assert.Equal(t, "11 99999-0000", got.Telefone)
	assert.Equal(t, "Carbone", got.Empresa)
}

func TestMemoryUserStoreResetTokenLifecycle(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	u := model.User{Nome: "Ana", Email: "ana@example.com", SenhaHash: "old"}
	require.NoError(t, s.Create(ctx, &u))

	require.NoError(t, s.SetResetToken(ctx, u.ID, "tok123", time.Now().UTC().Add(time.Hour)))

	got, err := s.GetByResetToken(ctx, "tok123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetByResetToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.ResetPassword(ctx, u.ID, "new"))
	after, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", after.SenhaHash)

	// Consumed token no longer resolves.
	_, err = s.GetByResetToken(ctx, "tok123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserStoreResetTokenExpired(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	u := model.User{Nome: "Ana", Email: "ana@example.com"}
	require.NoError(t, s.Create(ctx, &u))
	require.NoError(t, s.SetResetToken(ctx, u.ID, "tok123", time.Now().UTC().Add(-time.Minute)))

	_, err := s.GetByResetToken(ctx, "tok123")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryTokenStoreLifecycle(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, s.StoreRefresh(ctx, 5, "hash-a", time.Now().UTC().Add(time.Hour)))

	uid, err := s.ValidateRefresh(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uid)

	_, err = s.ValidateRefresh(ctx, "hash-unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.RevokeByHash(ctx, "hash-a"))
	_, err = s.ValidateRefresh(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTokenStoreExpiryAndRevokeAll(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, s.StoreRefresh(ctx, 5, "hash-old", time.Now().UTC().Add(-time.Minute)))
	_, err := s.ValidateRefresh(ctx, "hash-old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, s.StoreRefresh(ctx, 5, "hash-a", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, s.StoreRefresh(ctx, 5, "hash-b", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, s.StoreRefresh(ctx, 6, "hash-other", time.Now().UTC().Add(time.Hour)))

	require.NoError(t, s.RevokeAllForUser(ctx, 5))

	_, err = s.ValidateRefresh(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ValidateRefresh(ctx, "hash-b")
	assert.ErrorIs(t, err, ErrNotFound)

	uid, err := s.ValidateRefresh(ctx, "hash-other")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), uid)
}

func TestMemoryActivityStorePaging(t *testing.T) {
	s := NewMemoryActivityStore()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		a := model.Activity{
			UserID:      1,
			Action:      model.ActionLogin,
			Description: fmt.Sprintf("login %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Append(ctx, &a))
	}
	other := model.Activity{UserID: 2, Action: model.ActionLogout, CreatedAt: base}
	require.NoError(t, s.Append(ctx, &other))

	page1, total, err := s.ListByUser(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page1, 10)
	assert.Equal(t, "login 24", page1[0].Description) // newest first

	page3, _, err := s.ListByUser(ctx, 1, 20, 10)
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	empty, total, err := s.ListByUser(ctx, 1, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, empty)
}

func TestMemoryActivityStoreRejectsUnknownAction(t *testing.T) {
	s := NewMemoryActivityStore()
	a := model.Activity{UserID: 1, Action: model.Action("INVENTADA")}
	assert.Error(t, s.Append(context.Background(), &a))
}

func TestCouponRepoSeeds(t *testing.T) {
	r := NewCouponRepo()
	ctx := context.Background()

	c, err := r.GetByCode(ctx, "bemvindo10")
	require.NoError(t, err)
	assert.Equal(t, "BEMVINDO10", c.Codigo)
	assert.InDelta(t, 10.0, c.Discount(100), 1e-9)

	natal, err := r.GetByCode(ctx, "NATAL50")
	require.NoError(t, err)
	assert.InDelta(t, 30.0, natal.Discount(30), 1e-9) // fixed discount clamps to total

	_, err = r.GetByCode(ctx, "NAOEXISTE")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := r.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
