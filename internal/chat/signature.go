package chat

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const signatureVersion = "v0"

// MaxTimestampSkew bounds how old a signed request may be before it is
// treated as a replay.
const MaxTimestampSkew = 5 * time.Minute

// Sign computes the request signature the platform would send for the given
// timestamp and body. Exported for tests and local tooling.
func Sign(signingSecret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(signingSecret))
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the platform's request signature and timestamp.
func VerifySignature(signingSecret, timestamp, signature string, body []byte, now time.Time) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > MaxTimestampSkew || age < -MaxTimestampSkew {
		return false
	}
	expected := Sign(signingSecret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
