package zalopay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA256 of data
func Sign(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func equalMAC(expected, received string) bool {
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(received)))
}

// orderMACData joins the create fields in ZaloPay's fixed order
func orderMACData(appID, appTransID, appUser string, amount, appTime int64, embedData, item string) string {
	return strings.Join([]string{
		appID,
		appTransID,
		appUser,
		strconv.FormatInt(amount, 10),
		strconv.FormatInt(appTime, 10),
		embedData,
		item,
	}, "|")
}

// redirectMACData joins the redirect fields in ZaloPay's fixed order
func redirectMACData(r *Redirect) string {
	return strings.Join([]string{
		r.AppID,
		r.AppTransID,
		r.PmcID,
		r.BankCode,
		strconv.FormatInt(r.Amount, 10),
		strconv.FormatInt(r.DiscountAmount, 10),
		strconv.Itoa(r.Status),
	}, "|")
}
