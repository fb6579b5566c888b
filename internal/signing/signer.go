package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Signer mints the capability token embedded in every deliverable URL.
// Tokens are keyed digests, not stored values: the same inputs under the
// same secret always produce the same token.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
	}
}

// Sign computes the token for one purchased unit. The canonical payload is
// "{orderId}.{lineItemId}.{unitIndex}.{sku}", with a missing SKU contributing
// an empty segment. The raw HMAC-SHA256 digest is encoded with the URL-safe
// base64 alphabet, padding stripped.
func (s *Signer) Sign(orderID, lineItemID int64, unitIndex int, sku string) string {
	payload := fmt.Sprintf("%d.%d.%d.%s", orderID, lineItemID, unitIndex, sku)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
