package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign returns the lowercase hex HMAC-SHA256 of raw
func Sign(raw, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// createRawSignature lists the create-request fields in MoMo's fixed order
func createRawSignature(accessKey string, body createPaymentBody) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		accessKey, body.Amount, body.ExtraData, body.IpnURL, body.OrderID,
		body.OrderInfo, body.PartnerCode, body.RedirectURL, body.RequestID, body.RequestType,
	)
}

// notificationRawSignature lists the IPN fields in MoMo's fixed order
func notificationRawSignature(accessKey string, n *Notification) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		accessKey, n.Amount, n.ExtraData, n.Message, n.OrderID, n.OrderInfo,
		n.OrderType, n.PartnerCode, n.PayType, n.RequestID, n.ResponseTime, n.ResultCode, n.TransID,
	)
}
