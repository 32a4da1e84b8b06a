package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testNfcSecret = "test-nfc-secret-at-least-32-chars!!"

func TestSign_Deterministic(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)

	first := nfc.Sign("DEMO-TAG-001", 1700000000000)
	second := nfc.Sign("DEMO-TAG-001", 1700000000000)

	assert.Equal(t, first, second)
	assert.Len(t, first, 10)
}

func TestSign_DiffersPerInput(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)

	base := nfc.Sign("DEMO-TAG-001", 1700000000000)

	assert.NotEqual(t, base, nfc.Sign("DEMO-TAG-002", 1700000000000))
	assert.NotEqual(t, base, nfc.Sign("DEMO-TAG-001", 1700000000001))
}

func TestVerify_Success(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)

	sig := nfc.Sign("DEMO-TAG-001", 1700000000000)

	assert.True(t, nfc.Verify("DEMO-TAG-001", 1700000000000, sig))
}

func TestVerify_RejectsTamperedInputs(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)

	sig := nfc.Sign("DEMO-TAG-001", 1700000000000)

	assert.False(t, nfc.Verify("DEMO-TAG-002", 1700000000000, sig))
	assert.False(t, nfc.Verify("DEMO-TAG-001", 1700000000001, sig))
	assert.False(t, nfc.Verify("DEMO-TAG-001", 1700000000000, "aaaaaaaaaa"))
	assert.False(t, nfc.Verify("DEMO-TAG-001", 1700000000000, sig[:9]))
	assert.False(t, nfc.Verify("DEMO-TAG-001", 1700000000000, ""))
}

func TestVerify_DifferentSecret(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)
	other := NewNfcService("another-secret-also-32-chars-long!!", 5*time.Minute)

	sig := nfc.Sign("DEMO-TAG-001", 1700000000000)

	assert.False(t, other.Verify("DEMO-TAG-001", 1700000000000, sig))
}

func TestFreshAt_Bounds(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)
	now := int64(1700000000000)
	maxAge := int64(5 * 60 * 1000)

	tests := []struct {
		name      string
		timestamp int64
		fresh     bool
	}{
		{"minted now", now, true},
		{"one millisecond old", now - 1, true},
		{"exactly at max age", now - maxAge, true},
		{"one past max age", now - maxAge - 1, false},
		{"from the future", now + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fresh, nfc.FreshAt(tt.timestamp, now))
		})
	}
}

func TestTapURL_VerifiableRoundTrip(t *testing.T) {
	nfc := NewNfcService(testNfcSecret, 5*time.Minute)

	link := nfc.TapURL("https://figurehub.example", "DEMO-TAG-001")

	assert.True(t, strings.HasPrefix(link, "https://figurehub.example/api/tap?u=DEMO-TAG-001&ts="))
	assert.Contains(t, link, "&sig=")
}
