package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/lumiskin/skincare-backend/pkg/payment/momo"
	"github.com/lumiskin/skincare-backend/pkg/payment/vnpay"
	"github.com/lumiskin/skincare-backend/pkg/payment/zalopay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testVnpaySecret = "vnpay-secret"
	testZaloKey2    = "zalo-key2"
)

type paymentFixture struct {
	db        *gorm.DB
	orders    OrderService
	publisher *fakePublisher
	user      *model.User
	product   *model.Product
	momoRepo  repository.MomoRepository
	vnpayRepo repository.VnpayRepository
	zaloRepo  repository.ZaloPayRepository
}

func setupPaymentTest(t *testing.T) *paymentFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	promotionRepo := repository.NewPromotionRepository(testDB)
	publisher := &fakePublisher{}
	return &paymentFixture{
		db: testDB,
		orders: NewOrderService(
			testDB,
			repository.NewOrderRepository(testDB),
			repository.NewCartRepository(testDB),
			promotionRepo,
			NewPromotionService(promotionRepo),
			newFakeMailer(),
			publisher,
			"https://shop.example.com",
		),
		publisher: publisher,
		user:      createTestUser(t, testDB, "payer@example.com", model.RoleCustomer),
		product:   createTestProduct(t, testDB, "Toner", 400000, 320000, 10),
		momoRepo:  repository.NewMomoRepository(testDB),
		vnpayRepo: repository.NewVnpayRepository(testDB),
		zaloRepo:  repository.NewZaloPayRepository(testDB),
	}
}

// onlineOrder inserts a pending order paid through method
func (f *paymentFixture) onlineOrder(t *testing.T, method model.PaymentMethod) *model.Order {
	order := createTestOrder(t, f.db, f.user.ID, f.product, model.OrderStatusPending)
	require.NoError(t, f.db.Model(order).Update("payment_method", method).Error)
	order.PaymentMethod = method
	return order
}

func (f *paymentFixture) order(t *testing.T, id uint) model.Order {
	var order model.Order
	require.NoError(t, f.db.First(&order, id).Error)
	return order
}

func newMomoTestClient(t *testing.T) *momo.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(momo.CreatePaymentResponse{
			OrderID:    body["orderId"].(string),
			ResultCode: momo.ResultSuccess,
			PayURL:     "https://test-payment.momo.vn/pay/" + body["orderId"].(string),
		})
	}))
	t.Cleanup(server.Close)

	client, err := momo.NewClient(momo.Config{
		PartnerCode: "MOMOTEST",
		AccessKey:   "access",
		SecretKey:   "secret",
		Endpoint:    server.URL,
		RedirectURL: "https://shop.example.com/payment/momo/return",
		IPNURL:      "https://api.example.com/api/Momo/ipn",
	})
	require.NoError(t, err)
	return client
}

func TestMomoService_PaymentFlow(t *testing.T) {
	f := setupPaymentTest(t)
	client := newMomoTestClient(t)
	svc := NewMomoService(client, f.momoRepo, f.orders)
	order := f.onlineOrder(t, model.PaymentMethodMomo)

	link, err := svc.CreatePayment(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(320000), link.Amount)
	assert.Contains(t, link.PayURL, link.Reference)

	notification := func(amount int64, resultCode int) *momo.Notification {
		n := &momo.Notification{
			PartnerCode:  "MOMOTEST",
			OrderID:      link.Reference,
			RequestID:    "req-1",
			Amount:       amount,
			OrderInfo:    "order",
			OrderType:    "momo_wallet",
			TransID:      4088878653,
			ResultCode:   resultCode,
			Message:      "Successful.",
			PayType:      "qr",
			ResponseTime: time.Now().UnixMilli(),
		}
		n.Signature = client.SignNotification(n)
		return n
	}

	t.Run("tampered field is rejected", func(t *testing.T) {
		n := notification(link.Amount, momo.ResultSuccess)
		n.TransID++
		_, err := svc.HandleIPN(n)
		assert.ErrorIs(t, err, ErrInvalidPaymentSignature)

		var stored model.MomoCallback
		require.NoError(t, f.db.Order("id DESC").First(&stored).Error)
		assert.False(t, stored.IsValid)
		assert.False(t, f.order(t, order.ID).IsPaid)
	})

	t.Run("amount mismatch is rejected", func(t *testing.T) {
		_, err := svc.HandleIPN(notification(link.Amount-1000, momo.ResultSuccess))
		assert.ErrorIs(t, err, ErrPaymentAmountMismatch)
		assert.False(t, f.order(t, order.ID).IsPaid)
	})

	t.Run("unknown payment", func(t *testing.T) {
		n := notification(link.Amount, momo.ResultSuccess)
		n.OrderID = "999_missing"
		n.Signature = client.SignNotification(n)
		_, err := svc.HandleIPN(n)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	result, err := svc.HandleIPN(notification(link.Amount, momo.ResultSuccess))
	require.NoError(t, err)
	assert.True(t, result.IsPaid)

	paid := f.order(t, order.ID)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, model.OrderStatusConfirmed, paid.Status)
	assert.Equal(t, model.PaymentStatusCompleted, paid.PaymentStatus)
	assert.Equal(t, 1, f.publisher.count(EventPaymentCompleted))

	// the redirect repeats the same signed fields and is a no-op once paid
	n := notification(link.Amount, momo.ResultSuccess)
	query := url.Values{}
	query.Set("partnerCode", n.PartnerCode)
	query.Set("orderId", n.OrderID)
	query.Set("requestId", n.RequestID)
	query.Set("amount", strconv.FormatInt(n.Amount, 10))
	query.Set("orderInfo", n.OrderInfo)
	query.Set("orderType", n.OrderType)
	query.Set("transId", strconv.FormatInt(n.TransID, 10))
	query.Set("resultCode", strconv.Itoa(n.ResultCode))
	query.Set("message", n.Message)
	query.Set("payType", n.PayType)
	query.Set("responseTime", strconv.FormatInt(n.ResponseTime, 10))
	query.Set("signature", n.Signature)
	result, err = svc.HandleReturn(query)
	require.NoError(t, err)
	assert.True(t, result.IsPaid)
	assert.Equal(t, 1, f.publisher.count(EventPaymentCompleted))

	_, err = svc.CreatePayment(context.Background(), f.user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}

func TestMomoService_CreatePaymentChecks(t *testing.T) {
	f := setupPaymentTest(t)
	svc := NewMomoService(newMomoTestClient(t), f.momoRepo, f.orders)

	cod := createTestOrder(t, f.db, f.user.ID, f.product, model.OrderStatusPending)
	_, err := svc.CreatePayment(context.Background(), f.user.ID, cod.ID)
	assert.ErrorIs(t, err, ErrPaymentMethodMismatch)

	order := f.onlineOrder(t, model.PaymentMethodMomo)
	stranger := createTestUser(t, f.db, "stranger@example.com", model.RoleCustomer)
	_, err = svc.CreatePayment(context.Background(), stranger.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	_, err = NewMomoService(nil, f.momoRepo, f.orders).CreatePayment(context.Background(), f.user.ID, order.ID)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func vnpayQuery(params map[string]string) url.Values {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("vnp_SecureHash", vnpay.Sign(params, testVnpaySecret))
	return q
}

func TestVnpayService_PaymentFlow(t *testing.T) {
	f := setupPaymentTest(t)
	client, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    "TESTTMN",
		HashSecret: testVnpaySecret,
		PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.example.com/api/Vnpay/return",
	})
	require.NoError(t, err)
	svc := NewVnpayService(client, f.vnpayRepo, f.orders, 15*time.Minute)
	order := f.onlineOrder(t, model.PaymentMethodVnPay)

	link, err := svc.CreatePaymentURL(f.user.ID, order.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Contains(t, link.PayURL, "vnp_TxnRef="+url.QueryEscape(link.Reference))

	params := func(amount int64) map[string]string {
		return map[string]string{
			"vnp_TmnCode":           "TESTTMN",
			"vnp_TxnRef":            link.Reference,
			"vnp_Amount":            strconv.FormatInt(amount*100, 10),
			"vnp_ResponseCode":      vnpay.ResponseSuccess,
			"vnp_TransactionStatus": vnpay.ResponseSuccess,
			"vnp_TransactionNo":     "14226112",
			"vnp_BankCode":          "NCB",
			"vnp_PayDate":           "20240201103000",
		}
	}

	tampered := vnpayQuery(params(link.Amount))
	tampered.Set("vnp_Amount", "100")
	assert.Equal(t, vnpay.IPNInvalidChecksum, svc.HandleIPN(tampered).RspCode)

	assert.Equal(t, vnpay.IPNInvalidAmount, svc.HandleIPN(vnpayQuery(params(link.Amount+1))).RspCode)

	unknown := params(link.Amount)
	unknown["vnp_TxnRef"] = "missing"
	assert.Equal(t, vnpay.IPNOrderNotFound, svc.HandleIPN(vnpayQuery(unknown)).RspCode)

	assert.Equal(t, vnpay.IPNConfirmed, svc.HandleIPN(vnpayQuery(params(link.Amount))).RspCode)
	assert.True(t, f.order(t, order.ID).IsPaid)
	assert.Equal(t, vnpay.IPNAlreadyConfirmed, svc.HandleIPN(vnpayQuery(params(link.Amount))).RspCode)

	result, err := svc.HandleReturn(vnpayQuery(params(link.Amount)))
	require.NoError(t, err)
	assert.True(t, result.IsPaid)

	txn, err := f.vnpayRepo.FindByTxnRef(link.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.GatewayStatusSucceeded, txn.Status)
	assert.Equal(t, "NCB", txn.BankCode)
}

func newZaloPayTestClient(t *testing.T) *zalopay.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_ = json.NewEncoder(w).Encode(zalopay.CreateOrderResponse{
			ReturnCode:   zalopay.ReturnSuccess,
			OrderURL:     "https://qcgateway.zalopay.vn/openinapp?order=" + r.PostForm.Get("app_trans_id"),
			ZpTransToken: "token",
		})
	}))
	t.Cleanup(server.Close)

	client, err := zalopay.NewClient(zalopay.Config{
		AppID:       "2553",
		Key1:        "zalo-key1",
		Key2:        testZaloKey2,
		Endpoint:    server.URL,
		CallbackURL: "https://api.example.com/api/ZaloPay/callback",
		RedirectURL: "https://api.example.com/api/ZaloPay/redirect",
	})
	require.NoError(t, err)
	return client
}

func TestZaloPayService_Callback(t *testing.T) {
	f := setupPaymentTest(t)
	svc := NewZaloPayService(newZaloPayTestClient(t), f.zaloRepo, f.orders)
	order := f.onlineOrder(t, model.PaymentMethodZaloPay)

	link, err := svc.CreateOrder(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(320000), link.Amount)

	callbackData := func(amount int64) string {
		raw, err := json.Marshal(zalopay.CallbackData{
			AppID:      2553,
			AppTransID: link.Reference,
			Amount:     amount,
			ZpTransID:  240201000001,
		})
		require.NoError(t, err)
		return string(raw)
	}

	data := callbackData(link.Amount)
	mac := zalopay.Sign(data, testZaloKey2)

	_, err = svc.HandleCallback(callbackData(link.Amount+1), mac)
	assert.ErrorIs(t, err, ErrInvalidPaymentSignature, "data changed after signing")

	_, err = svc.HandleCallback(data, zalopay.Sign(data, "wrong-key"))
	assert.ErrorIs(t, err, ErrInvalidPaymentSignature)

	mismatch := callbackData(1000)
	_, err = svc.HandleCallback(mismatch, zalopay.Sign(mismatch, testZaloKey2))
	assert.ErrorIs(t, err, ErrPaymentAmountMismatch)

	result, err := svc.HandleCallback(data, mac)
	require.NoError(t, err)
	assert.True(t, result.IsPaid)
	assert.True(t, f.order(t, order.ID).IsPaid)

	record, err := f.zaloRepo.FindByAppTransID(link.Reference)
	require.NoError(t, err)
	assert.Equal(t, int64(240201000001), record.ZpTransID)

	result, err = svc.HandleCallback(data, mac)
	require.NoError(t, err)
	assert.True(t, result.IsPaid)
	assert.Equal(t, 1, f.publisher.count(EventPaymentCompleted))
}

func TestZaloPayService_Redirect(t *testing.T) {
	f := setupPaymentTest(t)
	client := newZaloPayTestClient(t)
	svc := NewZaloPayService(client, f.zaloRepo, f.orders)
	order := f.onlineOrder(t, model.PaymentMethodZaloPay)

	link, err := svc.CreateOrder(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)

	redirectQuery := func(r *zalopay.Redirect) url.Values {
		q := url.Values{}
		q.Set("appid", r.AppID)
		q.Set("apptransid", r.AppTransID)
		q.Set("pmcid", r.PmcID)
		q.Set("bankcode", r.BankCode)
		q.Set("amount", strconv.FormatInt(r.Amount, 10))
		q.Set("discountamount", strconv.FormatInt(r.DiscountAmount, 10))
		q.Set("status", strconv.Itoa(r.Status))
		q.Set("checksum", r.Checksum)
		return q
	}
	redirect := &zalopay.Redirect{
		AppID:      "2553",
		AppTransID: link.Reference,
		PmcID:      "38",
		Amount:     link.Amount,
		Status:     zalopay.ReturnSuccess,
	}
	redirect.Checksum = client.SignRedirect(redirect)

	tampered := redirectQuery(redirect)
	tampered.Set("pmcid", "39")
	_, err = svc.HandleRedirect(tampered)
	assert.ErrorIs(t, err, ErrInvalidPaymentSignature)

	result, err := svc.HandleRedirect(redirectQuery(redirect))
	require.NoError(t, err)
	assert.True(t, result.IsPaid)

	var redirects []model.ZaloPayRedirect
	require.NoError(t, f.db.Order("id ASC").Find(&redirects).Error)
	require.Len(t, redirects, 2)
	assert.False(t, redirects[0].IsValid)
	assert.True(t, redirects[1].IsValid)
}

func TestPaymentExpiryService_SweepExpired(t *testing.T) {
	f := setupPaymentTest(t)
	momoSvc := NewMomoService(newMomoTestClient(t), f.momoRepo, f.orders)
	zaloSvc := NewZaloPayService(newZaloPayTestClient(t), f.zaloRepo, f.orders)
	sweeper := NewPaymentExpiryService(f.momoRepo, f.vnpayRepo, f.zaloRepo, f.orders, 15*time.Minute)

	stale := f.onlineOrder(t, model.PaymentMethodMomo)
	_, err := momoSvc.CreatePayment(context.Background(), f.user.ID, stale.ID)
	require.NoError(t, err)
	fresh := f.onlineOrder(t, model.PaymentMethodZaloPay)
	_, err = zaloSvc.CreateOrder(context.Background(), f.user.ID, fresh.ID)
	require.NoError(t, err)
	cod := createTestOrder(t, f.db, f.user.ID, f.product, model.OrderStatusPending)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id IN ?", []uint{stale.ID, cod.ID}).Update("created_at", past).Error)
	require.NoError(t, f.db.Model(&model.MomoPayment{}).Where("order_id = ?", stale.ID).Update("created_at", past).Error)
	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", f.product.ID).Update("stock_quantity", 5).Error)

	summary, err := sweeper.SweepExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MomoPayments)
	assert.Equal(t, 0, summary.ZaloPayOrders)
	assert.Equal(t, 1, summary.CancelledOrders)

	expired := f.order(t, stale.ID)
	assert.Equal(t, model.OrderStatusCancelled, expired.Status)
	assert.Equal(t, model.PaymentStatusExpired, expired.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, f.order(t, fresh.ID).Status)
	assert.Equal(t, model.OrderStatusPending, f.order(t, cod.ID).Status, "cash orders never expire")

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 6, product.StockQuantity, "stock of the expired line is restored")

	payments, err := f.momoRepo.FindByOrderID(stale.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsExpired)

	summary, err = sweeper.SweepExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MomoPayments+summary.CancelledOrders)
}

// failingOrders fails MarkPaid a fixed number of times before delegating
type failingOrders struct {
	OrderService
	failures int
}

func (o *failingOrders) MarkPaid(orderID uint, method model.PaymentMethod) (*model.Order, error) {
	if o.failures > 0 {
		o.failures--
		return nil, errors.New("database is locked")
	}
	return o.OrderService.MarkPaid(orderID, method)
}

func signedMomoNotification(client *momo.Client, reference string, amount int64) *momo.Notification {
	n := &momo.Notification{
		PartnerCode:  "MOMOTEST",
		OrderID:      reference,
		RequestID:    "req-retry",
		Amount:       amount,
		OrderInfo:    "order",
		OrderType:    "momo_wallet",
		TransID:      4088878654,
		ResultCode:   momo.ResultSuccess,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: time.Now().UnixMilli(),
	}
	n.Signature = client.SignNotification(n)
	return n
}

func TestMomoService_RetryAfterOrderUpdateFails(t *testing.T) {
	f := setupPaymentTest(t)
	client := newMomoTestClient(t)
	orders := &failingOrders{OrderService: f.orders, failures: 1}
	svc := NewMomoService(client, f.momoRepo, orders)
	order := f.onlineOrder(t, model.PaymentMethodMomo)

	link, err := svc.CreatePayment(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	n := signedMomoNotification(client, link.Reference, link.Amount)

	_, err = svc.HandleIPN(n)
	require.Error(t, err)
	assert.False(t, f.order(t, order.ID).IsPaid)
	payment, err := f.momoRepo.FindByMomoOrderID(link.Reference)
	require.NoError(t, err)
	assert.False(t, payment.IsPaid)
	assert.Equal(t, model.GatewayStatusPending, payment.Status)

	result, err := svc.HandleIPN(n)
	require.NoError(t, err)
	assert.True(t, result.IsPaid)
	assert.True(t, f.order(t, order.ID).IsPaid)
	payment, err = f.momoRepo.FindByMomoOrderID(link.Reference)
	require.NoError(t, err)
	assert.True(t, payment.IsPaid)
}

func TestVnpayService_RetryAfterOrderUpdateFails(t *testing.T) {
	f := setupPaymentTest(t)
	client, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    "TESTTMN",
		HashSecret: testVnpaySecret,
		PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.example.com/api/Vnpay/return",
	})
	require.NoError(t, err)
	svc := NewVnpayService(client, f.vnpayRepo, &failingOrders{OrderService: f.orders, failures: 1}, 15*time.Minute)
	order := f.onlineOrder(t, model.PaymentMethodVnPay)

	link, err := svc.CreatePaymentURL(f.user.ID, order.ID, "10.0.0.1")
	require.NoError(t, err)
	query := vnpayQuery(map[string]string{
		"vnp_TmnCode":           "TESTTMN",
		"vnp_TxnRef":            link.Reference,
		"vnp_Amount":            strconv.FormatInt(link.Amount*100, 10),
		"vnp_ResponseCode":      vnpay.ResponseSuccess,
		"vnp_TransactionStatus": vnpay.ResponseSuccess,
		"vnp_TransactionNo":     "14226113",
		"vnp_BankCode":          "NCB",
		"vnp_PayDate":           "20240201103000",
	})

	assert.Equal(t, vnpay.IPNUnknownError, svc.HandleIPN(query).RspCode)
	assert.False(t, f.order(t, order.ID).IsPaid)

	assert.Equal(t, vnpay.IPNConfirmed, svc.HandleIPN(query).RspCode)
	assert.True(t, f.order(t, order.ID).IsPaid)
}

func TestZaloPayService_RetryAfterOrderUpdateFails(t *testing.T) {
	f := setupPaymentTest(t)
	svc := NewZaloPayService(newZaloPayTestClient(t), f.zaloRepo, &failingOrders{OrderService: f.orders, failures: 1})
	order := f.onlineOrder(t, model.PaymentMethodZaloPay)

	link, err := svc.CreateOrder(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(zalopay.CallbackData{
		AppID:      2553,
		AppTransID: link.Reference,
		Amount:     link.Amount,
		ZpTransID:  240201000002,
	})
	require.NoError(t, err)
	data := string(raw)
	mac := zalopay.Sign(data, testZaloKey2)

	_, err = svc.HandleCallback(data, mac)
	require.Error(t, err)
	record, err := f.zaloRepo.FindByAppTransID(link.Reference)
	require.NoError(t, err)
	assert.False(t, record.IsPaid)

	result, err := svc.HandleCallback(data, mac)
	require.NoError(t, err)
	assert.True(t, result.IsPaid)
	assert.True(t, f.order(t, order.ID).IsPaid)
}

func TestPaymentExpiryService_KeepsOrderWithOpenPaymentLink(t *testing.T) {
	f := setupPaymentTest(t)
	client := newMomoTestClient(t)
	svc := NewMomoService(client, f.momoRepo, f.orders)
	sweeper := NewPaymentExpiryService(f.momoRepo, f.vnpayRepo, f.zaloRepo, f.orders, 10*time.Minute)

	// the order is 14 minutes old but its payment link was opened just now
	order := f.onlineOrder(t, model.PaymentMethodMomo)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("created_at", time.Now().Add(-14*time.Minute)).Error)
	link, err := svc.CreatePayment(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)

	summary, err := sweeper.SweepExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MomoPayments)
	assert.Equal(t, 0, summary.CancelledOrders)
	assert.Equal(t, model.OrderStatusPending, f.order(t, order.ID).Status)

	result, err := svc.HandleIPN(signedMomoNotification(client, link.Reference, link.Amount))
	require.NoError(t, err)
	assert.True(t, result.IsPaid)

	paid := f.order(t, order.ID)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, model.OrderStatusConfirmed, paid.Status)
}

func TestMomoService_RefusesExpiredPayment(t *testing.T) {
	f := setupPaymentTest(t)
	client := newMomoTestClient(t)
	svc := NewMomoService(client, f.momoRepo, f.orders)
	sweeper := NewPaymentExpiryService(f.momoRepo, f.vnpayRepo, f.zaloRepo, f.orders, 10*time.Minute)

	order := f.onlineOrder(t, model.PaymentMethodMomo)
	link, err := svc.CreatePayment(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).Update("created_at", past).Error)
	require.NoError(t, f.db.Model(&model.MomoPayment{}).Where("order_id = ?", order.ID).Update("created_at", past).Error)

	summary, err := sweeper.SweepExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MomoPayments)
	assert.Equal(t, 1, summary.CancelledOrders)

	_, err = svc.HandleIPN(signedMomoNotification(client, link.Reference, link.Amount))
	assert.ErrorIs(t, err, ErrPaymentExpired)

	cancelled := f.order(t, order.ID)
	assert.False(t, cancelled.IsPaid)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Zero(t, f.publisher.count(EventPaymentCompleted))
}

func TestOrderService_MarkPaidRefusesCancelledOrder(t *testing.T) {
	f := setupPaymentTest(t)
	order := f.onlineOrder(t, model.PaymentMethodMomo)
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("status", model.OrderStatusCancelled).Error)

	_, err := f.orders.MarkPaid(order.ID, model.PaymentMethodMomo)
	assert.ErrorIs(t, err, ErrOrderNotPayable)
	assert.False(t, f.order(t, order.ID).IsPaid)
}
