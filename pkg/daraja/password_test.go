package daraja

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_Deterministic(t *testing.T) {
	at := time.Date(2026, 8, 31, 14, 5, 9, 0, time.UTC)

	p1, ts1 := Password("174379", "passkey123", at)
	p2, ts2 := Password("174379", "passkey123", at)

	assert.Equal(t, p1, p2)
	assert.Equal(t, "20260831140509", ts1)
	assert.Equal(t, ts1, ts2)
}

func TestPassword_RoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	password, timestamp := Password("174379", "secret", at)

	decoded, err := base64.StdEncoding.DecodeString(password)
	require.NoError(t, err)
	assert.Equal(t, "174379"+"secret"+timestamp, string(decoded))
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "+254712345678"},
		{"0799999999", "254799999999"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}
