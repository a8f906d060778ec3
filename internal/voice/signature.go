package voice

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the provider's HMAC of the raw request body.
const SignatureHeader = "X-Vapi-Signature"

// VerifySignature checks the hex-encoded HMAC-SHA256 of body against the
// shared secret using a constant-time comparison. An empty secret disables
// verification (the deployment has not configured one).
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
