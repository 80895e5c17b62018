package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPasswordResetTest(t *testing.T) (PasswordResetService, repository.PasswordResetRepository, repository.UserRepository, *fakeMailer) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	resetRepo := repository.NewPasswordResetRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	m := newFakeMailer()
	svc := NewPasswordResetService(resetRepo, userRepo, m, "https://shop.example.com")

	hash, err := util.HashPassword("oldpassword")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(&model.User{
		Email:        "reset@example.com",
		PasswordHash: hash,
		Name:         "Reset User",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}))

	return svc, resetRepo, userRepo, m
}

func tokenFromLink(t *testing.T, link string) string {
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	svc, _, _, m := setupPasswordResetTest(t)

	t.Run("Known email receives a link", func(t *testing.T) {
		require.NoError(t, svc.RequestReset("Reset@Example.com"))
		require.Len(t, m.resets, 1)
		assert.Equal(t, "reset@example.com", m.resets[0].To)
		assert.Contains(t, m.resets[0].Link, "https://shop.example.com/reset-password?token=")
		assert.NotEmpty(t, tokenFromLink(t, m.resets[0].Link))
	})

	t.Run("Unknown email is silently accepted", func(t *testing.T) {
		require.NoError(t, svc.RequestReset("ghost@example.com"))
		assert.Len(t, m.resets, 1)
	})
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	svc, resetRepo, userRepo, m := setupPasswordResetTest(t)

	require.NoError(t, svc.RequestReset("reset@example.com"))
	firstToken := tokenFromLink(t, m.resets[0].Link)

	// a second request invalidates the first token
	require.NoError(t, svc.RequestReset("reset@example.com"))
	token := tokenFromLink(t, m.resets[1].Link)

	assert.ErrorIs(t, svc.ResetPassword(firstToken, "newpassword1"), ErrResetTokenUsed)
	assert.ErrorIs(t, svc.ResetPassword("unknown", "newpassword1"), ErrInvalidResetToken)
	assert.ErrorIs(t, svc.ResetPassword(token, "short"), ErrWeakPassword)

	require.NoError(t, svc.ResetPassword(token, "newpassword1"))

	user, err := userRepo.FindByEmail("reset@example.com")
	require.NoError(t, err)
	assert.True(t, util.VerifyPassword(user.PasswordHash, "newpassword1"))

	assert.ErrorIs(t, svc.ResetPassword(token, "anotherpass1"), ErrResetTokenUsed)

	t.Run("Expired token", func(t *testing.T) {
		require.NoError(t, resetRepo.Create(&model.PasswordReset{
			Email:     "reset@example.com",
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Minute),
		}))
		assert.ErrorIs(t, svc.ResetPassword("expired-token", "newpassword2"), ErrResetTokenExpired)
	})
}

func TestPasswordResetService_CleanupExpired(t *testing.T) {
	svc, resetRepo, _, _ := setupPasswordResetTest(t)

	require.NoError(t, resetRepo.Create(&model.PasswordReset{
		Email:     "reset@example.com",
		Token:     "old",
		ExpiresAt: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, resetRepo.Create(&model.PasswordReset{
		Email:     "reset@example.com",
		Token:     "fresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	deleted, err := svc.CleanupExpired(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = resetRepo.FindByToken("fresh")
	assert.NoError(t, err)
}
