package daraja

import (
	"encoding/base64"
	"strings"
	"time"
)

// TimestampLayout is the YYYYMMDDHHMMSS form Daraja uses for request
// timestamps and callback transaction dates.
const TimestampLayout = "20060102150405"

// Password computes the Lipa Na M-Pesa request password for the given instant:
// base64(shortCode + passkey + timestamp). The matching timestamp string is
// returned alongside because the request must carry the exact value that was
// encoded.
func Password(shortCode, passkey string, t time.Time) (password, timestamp string) {
	timestamp = t.Format(TimestampLayout)
	password = base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
	return password, timestamp
}

// NormalizePhone rewrites a national "0…" number to the 254 country-code form.
// Numbers in any other format pass through unchanged.
func NormalizePhone(phone string) string {
	if strings.HasPrefix(phone, "0") {
		return "254" + phone[1:]
	}
	return phone
}
