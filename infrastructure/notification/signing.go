package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signature headers set on signed webhook requests.
const (
	HeaderSignature = "X-Suggest-Signature"
	HeaderTimestamp = "X-Suggest-Timestamp"
)

// Signer computes HMAC-SHA256 signatures over "<unix timestamp>.<body>" so
// receivers can reject replayed requests.
type Signer struct {
	now func() time.Time
}

// NewSigner creates a new payload signer.
func NewSigner() *Signer {
	return &Signer{now: time.Now}
}

// Sign returns "sha256=<hex>" for payload signed at ts.
func (s *Signer) Sign(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Headers returns the signature headers for payload.
func (s *Signer) Headers(payload []byte, secret string) map[string]string {
	ts := s.now().Unix()
	return map[string]string{
		HeaderSignature: s.Sign(payload, secret, ts),
		HeaderTimestamp: strconv.FormatInt(ts, 10),
	}
}

// Verify checks signature against payload and rejects timestamps further
// than tolerance from now.
func (s *Signer) Verify(payload []byte, secret, signature, timestamp string, tolerance time.Duration) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := s.now().Sub(time.Unix(ts, 0))
	if skew < -tolerance || skew > tolerance {
		return false
	}
	return hmac.Equal([]byte(s.Sign(payload, secret, ts)), []byte(signature))
}
