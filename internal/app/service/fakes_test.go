package service

import (
	"sync"
	"testing"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/mailer"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentResetMail struct {
	To   string
	Name string
	Link string
}

type fakeMailer struct {
	mu            sync.Mutex
	resets        []sentResetMail
	confirmations []mailer.OrderConfirmation
	done          chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{done: make(chan struct{}, 16)}
}

func (m *fakeMailer) SendOrderConfirmation(to string, data mailer.OrderConfirmation) error {
	m.mu.Lock()
	m.confirmations = append(m.confirmations, data)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, name, resetLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, sentResetMail{To: to, Name: name, Link: resetLink})
	return nil
}

type publishedEvent struct {
	UserID     uint
	Backoffice bool
	Type       string
	Payload    interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) NotifyUser(userID uint, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (p *fakePublisher) NotifyBackoffice(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Backoffice: true, Type: eventType, Payload: payload})
}

func (p *fakePublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role model.UserRole) *model.User {
	user := &model.User{
		Email:    email,
		Name:     "Test " + string(role),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price, salePrice float64, stock int) *model.Product {
	product := &model.Product{
		Name:          name,
		Slug:          util.Slugify(name, "product"),
		Price:         price,
		SalePrice:     salePrice,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestOrder(t *testing.T, db *gorm.DB, userID uint, product *model.Product, status model.OrderStatus) *model.Order {
	order := &model.Order{
		UserID:         userID,
		TotalPrice:     product.Price,
		TotalPriceSale: product.EffectivePrice(),
		Status:         status,
		PaymentMethod:  model.PaymentMethodCOD,
		PaymentStatus:  model.PaymentStatusPending,
		OrderProducts: []model.OrderProduct{{
			ProductID: product.ID,
			Quantity:  1,
			UnitPrice: product.Price,
			SalePrice: product.EffectivePrice(),
		}},
	}
	require.NoError(t, db.Omit("User", "Promotion").Create(order).Error)
	return order
}
