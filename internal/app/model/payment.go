package model

import (
	"time"
)

type GatewayStatus string

const (
	GatewayStatusPending   GatewayStatus = "pending"
	GatewayStatusSucceeded GatewayStatus = "succeeded"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusExpired   GatewayStatus = "expired"
)

// MomoPayment is one create-payment request sent to Momo for an order
type MomoPayment struct {
	ID          uint          `gorm:"primarykey" json:"Id"`
	OrderID     uint          `gorm:"index;not null" json:"OrderId"`
	RequestID   string        `gorm:"uniqueIndex;not null" json:"RequestId"`
	MomoOrderID string        `gorm:"uniqueIndex;not null" json:"MomoOrderId"`
	Amount      int64         `gorm:"not null" json:"Amount"`
	PayURL      string        `gorm:"type:text" json:"PayUrl"`
	Status      GatewayStatus `gorm:"type:varchar(20);default:'pending';index" json:"Status"`
	IsPaid      bool          `gorm:"default:false" json:"IsPaid"`
	IsExpired   bool          `gorm:"default:false" json:"IsExpired"`
	CreatedAt   time.Time     `gorm:"index" json:"CreatedAt"`
	UpdatedAt   time.Time     `json:"UpdatedAt"`

	Order Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (MomoPayment) TableName() string {
	return "momo_payments"
}

// MomoCallback stores every IPN received, valid or not
type MomoCallback struct {
	ID            uint      `gorm:"primarykey" json:"Id"`
	MomoPaymentID *uint     `gorm:"index" json:"MomoPaymentId,omitempty"`
	OrderID       *uint     `gorm:"index" json:"OrderId,omitempty"`
	PartnerCode   string    `json:"PartnerCode"`
	RequestID     string    `gorm:"index" json:"RequestId"`
	MomoOrderID   string    `gorm:"index" json:"MomoOrderId"`
	Amount        int64     `json:"Amount"`
	TransID       int64     `json:"TransId"`
	ResultCode    int       `json:"ResultCode"`
	Message       string    `json:"Message"`
	PayType       string    `json:"PayType"`
	ResponseTime  int64     `json:"ResponseTime"`
	Signature     string    `json:"-"`
	IsValid       bool      `json:"IsValid"`
	CreatedAt     time.Time `json:"CreatedAt"`

	MomoPayment *MomoPayment `gorm:"foreignKey:MomoPaymentID;constraint:OnDelete:SET NULL" json:"-"`
	Order       *Order       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (MomoCallback) TableName() string {
	return "momo_callbacks"
}

type VnpayTransaction struct {
	ID                uint          `gorm:"primarykey" json:"Id"`
	OrderID           uint          `gorm:"index;not null" json:"OrderId"`
	TxnRef            string        `gorm:"uniqueIndex;not null" json:"TxnRef"`
	Amount            int64         `gorm:"not null" json:"Amount"`
	PaymentURL        string        `gorm:"type:text" json:"PaymentUrl"`
	BankCode          string        `json:"BankCode"`
	TransactionNo     string        `json:"TransactionNo"`
	ResponseCode      string        `json:"ResponseCode"`
	TransactionStatus string        `json:"TransactionStatus"`
	PayDate           string        `json:"PayDate"`
	Status            GatewayStatus `gorm:"type:varchar(20);default:'pending';index" json:"Status"`
	IsPaid            bool          `gorm:"default:false" json:"IsPaid"`
	IsExpired         bool          `gorm:"default:false" json:"IsExpired"`
	CreatedAt         time.Time     `gorm:"index" json:"CreatedAt"`
	UpdatedAt         time.Time     `json:"UpdatedAt"`

	Order Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VnpayTransaction) TableName() string {
	return "vnpay_transactions"
}

type ZaloPayOrder struct {
	ID           uint          `gorm:"primarykey" json:"Id"`
	OrderID      uint          `gorm:"index;not null" json:"OrderId"`
	AppTransID   string        `gorm:"uniqueIndex;not null" json:"AppTransId"`
	Amount       int64         `gorm:"not null" json:"Amount"`
	OrderURL     string        `gorm:"type:text" json:"OrderUrl"`
	ZpTransToken string        `json:"ZpTransToken"`
	ZpTransID    int64         `json:"ZpTransId"`
	Status       GatewayStatus `gorm:"type:varchar(20);default:'pending';index" json:"Status"`
	IsPaid       bool          `gorm:"default:false" json:"IsPaid"`
	IsExpired    bool          `gorm:"default:false" json:"IsExpired"`
	CreatedAt    time.Time     `gorm:"index" json:"CreatedAt"`
	UpdatedAt    time.Time     `json:"UpdatedAt"`

	Order Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ZaloPayOrder) TableName() string {
	return "zalopay_orders"
}

// ZaloPayRedirect stores the query parameters of a browser redirect back from ZaloPay
type ZaloPayRedirect struct {
	ID             uint      `gorm:"primarykey" json:"Id"`
	ZaloPayOrderID *uint     `gorm:"index" json:"ZaloPayOrderId,omitempty"`
	AppTransID     string    `gorm:"index" json:"AppTransId"`
	Status         int       `json:"Status"`
	Amount         int64     `json:"Amount"`
	Checksum       string    `json:"-"`
	IsValid        bool      `json:"IsValid"`
	CreatedAt      time.Time `json:"CreatedAt"`

	ZaloPayOrder *ZaloPayOrder `gorm:"foreignKey:ZaloPayOrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ZaloPayRedirect) TableName() string {
	return "zalopay_redirects"
}
