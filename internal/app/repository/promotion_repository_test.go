package repository

import (
	"testing"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPromotion(code string, promotionType model.PromotionType, start, end time.Time) *model.Promotion {
	return &model.Promotion{
		Code:            code,
		Name:            code,
		Type:            promotionType,
		DiscountPercent: 10,
		StartDate:       start,
		EndDate:         end,
		IsActive:        true,
	}
}

func TestPromotionRepository_FindActiveByType(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewPromotionRepository(testDB)

	now := time.Now()
	running := newTestPromotion("RUNNING", model.PromotionTypeOrder, now.Add(-time.Hour), now.Add(time.Hour))
	expired := newTestPromotion("EXPIRED", model.PromotionTypeOrder, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	productPromo := newTestPromotion("PRODUCT", model.PromotionTypeProduct, now.Add(-time.Hour), now.Add(time.Hour))
	exhausted := newTestPromotion("EXHAUSTED", model.PromotionTypeOrder, now.Add(-time.Hour), now.Add(time.Hour))
	exhausted.UsageLimit = 1
	exhausted.UsedCount = 1

	for _, p := range []*model.Promotion{running, expired, productPromo, exhausted} {
		require.NoError(t, repo.Create(p))
	}

	active, err := repo.FindActiveByType(model.PromotionTypeOrder, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "RUNNING", active[0].Code)

	byCode, err := repo.FindByCode("running")
	require.NoError(t, err)
	assert.Equal(t, running.ID, byCode.ID)
}

func TestPromotionRepository_DeleteKeepsOrders(t *testing.T) {
	testDB := setupTestDB(t)
	promotionRepo := NewPromotionRepository(testDB)
	orderRepo := NewOrderRepository(testDB)

	user := createTestUser(t, testDB, "promo@example.com")
	product := createTestProduct(t, testDB, "Lotion", 200000, 0)

	now := time.Now()
	promotion := newTestPromotion("SUMMER", model.PromotionTypeProduct, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, promotionRepo.Create(promotion))
	require.NoError(t, promotionRepo.ReplaceProducts(promotion.ID, []uint{product.ID}))
	require.NoError(t, promotionRepo.ReplaceCustomers(promotion.ID, []uint{user.ID}))

	order := &model.Order{
		UserID:         user.ID,
		PromotionID:    &promotion.ID,
		TotalPrice:     200000,
		TotalPriceSale: 180000,
		DiscountAmount: 20000,
		OrderProducts: []model.OrderProduct{
			{ProductID: product.ID, Quantity: 1, UnitPrice: 200000, SalePrice: 200000},
		},
	}
	require.NoError(t, orderRepo.Create(order))

	require.NoError(t, promotionRepo.Delete(promotion.ID))

	found, err := orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Nil(t, found.PromotionID)
	assert.Equal(t, 180000.0, found.TotalPriceSale)

	var links int64
	require.NoError(t, testDB.Model(&model.PromotionProduct{}).Where("promotion_id = ?", promotion.ID).Count(&links).Error)
	assert.Zero(t, links)

	assert.Error(t, promotionRepo.Delete(promotion.ID))
}

func TestPromotionRepository_IncrementUsage(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewPromotionRepository(testDB)

	now := time.Now()
	promotion := newTestPromotion("ONCE", model.PromotionTypeOrder, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.Create(promotion))

	require.NoError(t, repo.IncrementUsage(nil, promotion.ID))

	found, err := repo.FindByID(promotion.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.UsedCount)
}

func TestPromotionRepository_IncrementUsageRespectsLimit(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewPromotionRepository(testDB)

	now := time.Now()
	limited := newTestPromotion("TWICE", model.PromotionTypeOrder, now.Add(-time.Hour), now.Add(time.Hour))
	limited.UsageLimit = 2
	require.NoError(t, repo.Create(limited))

	require.NoError(t, repo.IncrementUsage(nil, limited.ID))
	require.NoError(t, repo.IncrementUsage(nil, limited.ID))
	assert.ErrorIs(t, repo.IncrementUsage(nil, limited.ID), ErrUsageLimitReached)

	found, err := repo.FindByID(limited.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.UsedCount)

	unlimited := newTestPromotion("ALWAYS", model.PromotionTypeOrder, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.Create(unlimited))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementUsage(nil, unlimited.ID))
	}
}
