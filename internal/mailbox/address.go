package mailbox

import (
	"net/mail"
	"strings"
)

// NormalizeAddress lowercases and trims an email address. It returns an empty
// string when the input does not parse as an RFC 5322 address.
func NormalizeAddress(address string) string {
	addr, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil || addr == nil {
		return ""
	}
	return strings.ToLower(addr.Address)
}

// ParseFromHeader extracts the display name and normalized address from a
// From header value like `"Tech Weekly" <news@example.com>`. The address is
// empty when the header does not contain a parseable address.
func ParseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	addr, err := mail.ParseAddress(from)
	if err != nil || addr == nil {
		// Some senders put a bare address in the header
		if strings.Contains(from, "@") && !strings.ContainsAny(from, "<>") {
			return "", strings.ToLower(from)
		}
		return "", ""
	}

	return strings.Trim(addr.Name, `"`), strings.ToLower(addr.Address)
}

// LocalPart returns the part of an address before the '@', lowercased
func LocalPart(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at <= 0 {
		return strings.ToLower(address)
	}
	return strings.ToLower(address[:at])
}
