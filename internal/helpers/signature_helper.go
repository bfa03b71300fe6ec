package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VerifyStripeSignature checks a "t=<unix>,v1=<hex>" signature header
// against the raw payload: HMAC-SHA256 over "<t>.<payload>" with the
// webhook secret. Events older than the tolerance are rejected.
func VerifyStripeSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) bool {
	var timestamp int64
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			timestamp, _ = strconv.ParseInt(pair[1], 10, 64)
		case "v1":
			if sig, err := hex.DecodeString(pair[1]); err == nil {
				signatures = append(signatures, sig)
			}
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return false
	}
	if tolerance > 0 && now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return false
	}

	expected := signPayload(payload, secret, timestamp)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return true
		}
	}
	return false
}

// StripeSignatureHeader produces a header VerifyStripeSignature accepts.
// Used by tests and local webhook replay tooling.
func StripeSignatureHeader(payload []byte, secret string, now time.Time) string {
	timestamp := now.Unix()
	signature := signPayload(payload, secret, timestamp)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(signature))
}

func signPayload(payload []byte, secret string, timestamp int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}
