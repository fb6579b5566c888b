package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HeaderShopifyHmac carries the base64 HMAC-SHA256 digest Shopify computes
// over the raw webhook body. Lookup through http.Header.Get is
// case-insensitive, so lower-cased variants from proxies resolve too.
const HeaderShopifyHmac = "X-Shopify-Hmac-Sha256"

// VerifyWebhook reports whether signature authenticates rawBody under
// secret. rawBody must be the exact byte sequence read off the wire;
// hashing a re-serialized parse of the body is not equivalent.
//
// A missing or undecodable signature is an ordinary rejection, never an
// error. Comparison of the raw digests runs in constant time, and a
// length mismatch fails before any content is compared.
func VerifyWebhook(signature string, rawBody []byte, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	if len(provided) != len(expected) {
		return false
	}

	return hmac.Equal(provided, expected)
}
