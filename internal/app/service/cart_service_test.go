package service

import (
	"math/rand"
	"testing"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type cartFixture struct {
	service   CartService
	db        *gorm.DB
	user      *model.User
	product   *model.Product
	publisher *fakePublisher
}

func setupCartServiceTest(t *testing.T) *cartFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	publisher := &fakePublisher{}
	return &cartFixture{
		service: NewCartService(
			repository.NewCartRepository(testDB),
			repository.NewProductRepository(testDB),
			publisher,
		),
		db:        testDB,
		user:      createTestUser(t, testDB, "cart@example.com", model.RoleCustomer),
		product:   createTestProduct(t, testDB, "Moisturizer", 300000, 250000, 5),
		publisher: publisher,
	}
}

func TestCalculateCartTotals(t *testing.T) {
	variation := &model.ProductVariation{Price: 500000, SalePrice: 450000}

	items := []model.CartItem{
		{Quantity: 2, Selected: true, Product: model.Product{Price: 100000}},
		{Quantity: 1, Selected: true, Product: model.Product{Price: 300000, SalePrice: 250000}},
		{Quantity: 1, Selected: true, Product: model.Product{Price: 1}, ProductVariation: variation},
		{Quantity: 5, Selected: false, Product: model.Product{Price: 999999}},
	}

	totals := CalculateCartTotals(items)
	assert.Equal(t, 2*100000.0+300000+500000, totals.TotalPrice)
	assert.Equal(t, 2*100000.0+250000+450000, totals.TotalPriceSale)
	assert.Equal(t, 100000.0, totals.Saved)
	assert.Equal(t, 4, totals.ItemCount)

	empty := CalculateCartTotals(nil)
	assert.Equal(t, CartTotals{}, empty)
}

func TestCalculateCartTotals_SaleAboveListPrice(t *testing.T) {
	items := []model.CartItem{
		{Quantity: 2, Selected: true, Product: model.Product{Price: 100000, SalePrice: 150000}},
	}

	totals := CalculateCartTotals(items)
	assert.Equal(t, 200000.0, totals.TotalPrice)
	assert.Equal(t, totals.TotalPrice, totals.TotalPriceSale)
	assert.Zero(t, totals.Saved)
	assert.Equal(t, 2, totals.ItemCount)
}

func TestCalculateCartTotals_MatchesLineSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		var items []model.CartItem
		var wantSale, wantList float64
		for n := rng.Intn(6); n >= 0; n-- {
			price := float64(rng.Intn(1000)+1) * 1000
			sale := 0.0
			if rng.Intn(2) == 0 {
				sale = float64(rng.Intn(int(price/1000))) * 1000
			}
			item := model.CartItem{
				Quantity: rng.Intn(5) + 1,
				Selected: rng.Intn(4) != 0,
				Product:  model.Product{Price: price, SalePrice: sale},
			}
			if item.Selected {
				effective := price
				if sale > 0 {
					effective = sale
				}
				wantList += float64(item.Quantity) * price
				wantSale += float64(item.Quantity) * effective
			}
			items = append(items, item)
		}

		totals := CalculateCartTotals(items)
		assert.Equal(t, wantList, totals.TotalPrice)
		assert.Equal(t, wantSale, totals.TotalPriceSale)
		assert.LessOrEqual(t, totals.TotalPriceSale, totals.TotalPrice)
	}
}

func TestCartService_AddToCart(t *testing.T) {
	f := setupCartServiceTest(t)

	item, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, 1, f.publisher.count(EventCartUpdated))

	t.Run("Same line is merged", func(t *testing.T) {
		merged, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, item.ID, merged.ID)
		assert.Equal(t, 5, merged.Quantity)
	})

	t.Run("Merged quantity above stock", func(t *testing.T) {
		_, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("Unknown product", func(t *testing.T) {
		_, err := f.service.AddToCart(f.user.ID, 9999, nil, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		_, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Inactive product", func(t *testing.T) {
		hidden := createTestProduct(t, f.db, "Hidden", 1000, 0, 5)
		require.NoError(t, f.db.Model(hidden).Update("is_active", false).Error)
		_, err := f.service.AddToCart(f.user.ID, hidden.ID, nil, 1)
		assert.ErrorIs(t, err, ErrProductInactive)
	})
}

func TestCartService_Variations(t *testing.T) {
	f := setupCartServiceTest(t)

	variation := &model.ProductVariation{ProductID: f.product.ID, Name: "100ml", Price: 500000, SalePrice: 400000, StockQuantity: 2, IsActive: true}
	require.NoError(t, f.db.Create(variation).Error)

	_, err := f.service.AddToCart(f.user.ID, f.product.ID, &variation.ID, 2)
	require.NoError(t, err)
	_, err = f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
	require.NoError(t, err)

	cart, err := f.service.GetCart(f.user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2, "variation and plain product are separate lines")
	assert.Equal(t, 2*500000.0+300000, cart.Totals.TotalPrice)
	assert.Equal(t, 2*400000.0+250000, cart.Totals.TotalPriceSale)

	_, err = f.service.AddToCart(f.user.ID, f.product.ID, &variation.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	other := createTestProduct(t, f.db, "Other", 1000, 0, 10)
	_, err = f.service.AddToCart(f.user.ID, other.ID, &variation.ID, 1)
	assert.ErrorIs(t, err, ErrVariationNotFound)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	f := setupCartServiceTest(t)
	stranger := createTestUser(t, f.db, "stranger@example.com", model.RoleCustomer)

	item, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
	require.NoError(t, err)

	updated, err := f.service.UpdateCartItem(f.user.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.service.UpdateCartItem(f.user.ID, item.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = f.service.UpdateCartItem(stranger.ID, item.ID, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	assert.ErrorIs(t, f.service.RemoveFromCart(stranger.ID, item.ID), ErrCartItemNotFound)

	require.NoError(t, f.service.RemoveFromCart(f.user.ID, item.ID))
	cart, err := f.service.GetCart(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_SelectionAffectsTotals(t *testing.T) {
	f := setupCartServiceTest(t)
	second := createTestProduct(t, f.db, "Eye Cream", 400000, 0, 5)

	first, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
	require.NoError(t, err)
	_, err = f.service.AddToCart(f.user.ID, second.ID, nil, 1)
	require.NoError(t, err)

	view, err := f.service.SetSelected(f.user.ID, []uint{first.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, 400000.0, view.Totals.TotalPriceSale)
	assert.Equal(t, 1, view.Totals.ItemCount)

	view, err = f.service.SetSelected(f.user.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 650000.0, view.Totals.TotalPriceSale)
}

func TestCartService_ClearCart(t *testing.T) {
	f := setupCartServiceTest(t)

	_, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
	require.NoError(t, err)
	require.NoError(t, f.service.ClearCart(f.user.ID))

	cart, err := f.service.GetCart(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, CartTotals{}, cart.Totals)
	assert.Equal(t, 2, f.publisher.count(EventCartUpdated))
}

func TestCartService_GetCartWithInvertedSalePrice(t *testing.T) {
	f := setupCartServiceTest(t)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", f.product.ID).
		Update("sale_price", 450000).Error)

	_, err := f.service.AddToCart(f.user.ID, f.product.ID, nil, 1)
	require.NoError(t, err)

	cart, err := f.service.GetCart(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 300000.0, cart.Totals.TotalPrice)
	assert.Equal(t, 300000.0, cart.Totals.TotalPriceSale)
	assert.Zero(t, cart.Totals.Saved)
}
