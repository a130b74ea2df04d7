package muxapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature, lower-cased.
const SignatureHeader = "mux-signature"

// DefaultTolerance is how old a signed timestamp may be.
const DefaultTolerance = 5 * time.Minute

// ErrInvalidSignature is returned for deliveries that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier checks the mux-signature header of webhook deliveries.
type Verifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier returns a Verifier for secret. A zero tolerance means
// DefaultTolerance.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance, now: time.Now}
}

// WithClock returns a copy of v reading the time from now.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	c := *v
	c.now = now
	return &c
}

// Verify checks body against the signature in headers. headers must be
// normalized with NormalizeHeaders.
func (v *Verifier) Verify(body []byte, headers map[string]string) error {
	if v.secret == "" {
		return fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}
	header, ok := headers[SignatureHeader]
	if !ok || header == "" {
		return fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed %s header", ErrInvalidSignature, SignatureHeader)
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	age := v.now().Sub(time.Unix(secs, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := []byte(sign(v.secret, timestamp, body))
	for _, s := range signatures {
		if hmac.Equal([]byte(s), expected) {
			return nil
		}
	}
	return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
}

// SignatureFor builds a mux-signature header value for body signed at t.
func SignatureFor(secret string, body []byte, t time.Time) string {
	timestamp := strconv.FormatInt(t.Unix(), 10)
	return "t=" + timestamp + ",v1=" + sign(secret, timestamp, body)
}

func sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// NormalizeHeaders lower-cases header names and keeps the first value of
// each.
func NormalizeHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) == 0 {
			continue
		}
		key := strings.ToLower(k)
		if _, seen := out[key]; !seen {
			out[key] = vs[0]
		}
	}
	return out
}
