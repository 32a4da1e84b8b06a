package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"
)

// signatureLength is how many characters of the base64url HMAC survive
// truncation. Matches what is burned into the tag programming tooling.
const signatureLength = 10

// NfcService computes and verifies tap signatures and timestamp freshness.
// Pure functions over a server-held secret; callers log outcomes.
type NfcService interface {
	Sign(tagUID string, timestampMillis int64) string
	Verify(tagUID string, timestampMillis int64, signature string) bool
	IsTimestampFresh(timestampMillis int64) bool
	FreshAt(timestampMillis, nowMillis int64) bool
	// TapURL builds a signed tap link for a tag, timestamped now.
	TapURL(baseURL, tagUID string) string
}

type nfcService struct {
	secret []byte
	maxAge time.Duration
}

func NewNfcService(secret string, maxAge time.Duration) NfcService {
	return &nfcService{secret: []byte(secret), maxAge: maxAge}
}

func (s *nfcService) Sign(tagUID string, timestampMillis int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", tagUID, timestampMillis)
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return signature[:signatureLength]
}

// Verify recomputes the expected signature and compares in constant time.
// A mismatch reveals nothing about where the difference is.
func (s *nfcService) Verify(tagUID string, timestampMillis int64, signature string) bool {
	expected := s.Sign(tagUID, timestampMillis)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *nfcService) IsTimestampFresh(timestampMillis int64) bool {
	return s.FreshAt(timestampMillis, time.Now().UnixMilli())
}

// FreshAt bounds replay: a tap link is usable for maxAge after it was
// minted, and a timestamp from the future is never valid.
func (s *nfcService) FreshAt(timestampMillis, nowMillis int64) bool {
	age := nowMillis - timestampMillis
	return age >= 0 && age <= s.maxAge.Milliseconds()
}

func (s *nfcService) TapURL(baseURL, tagUID string) string {
	now := time.Now().UnixMilli()
	sig := s.Sign(tagUID, now)
	return fmt.Sprintf("%s/api/tap?u=%s&ts=%d&sig=%s",
		baseURL, url.QueryEscape(tagUID), now, url.QueryEscape(sig))
}
