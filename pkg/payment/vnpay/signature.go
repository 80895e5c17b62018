package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	secureHashKey     = "vnp_SecureHash"
	secureHashTypeKey = "vnp_SecureHashType"
)

// Sign returns the uppercase hex HMAC-SHA512 over the canonical query of params
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonicalQuery(params)))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// canonicalQuery sorts keys and URL-encodes values, skipping the hash fields
// and empty values
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == secureHashKey || k == secureHashTypeKey || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(parts, "&")
}

// VerifySignature checks vnp_SecureHash against the remaining params
func VerifySignature(params map[string]string, secret string) bool {
	received := params[secureHashKey]
	if received == "" {
		return false
	}
	expected := Sign(params, secret)
	return hmac.Equal([]byte(strings.ToUpper(received)), []byte(expected))
}
