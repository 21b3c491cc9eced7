// Package phone normalises Brazilian mobile numbers into the chat address
// format used by the messaging gateway (55<DDD><number>@s.whatsapp.net).
package phone

import (
	"errors"
	"regexp"
	"strings"
)

const chatSuffix = "@s.whatsapp.net"

var (
	chatAddress = regexp.MustCompile(`^55\d{10,11}@s\.whatsapp\.net$`)
	nonDigits   = regexp.MustCompile(`\D`)

	ErrInvalid = errors.New("telefone inválido: use DDD + número (10 ou 11 dígitos)")
)

// Digits strips everything that is not a digit.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// Normalize accepts a raw number ("(11) 99999-9999", "5511999999999") or an
// already formatted chat address and returns the chat address.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}
	if chatAddress.MatchString(raw) {
		return raw, nil
	}

	digits := Digits(strings.TrimSuffix(raw, chatSuffix))
	if len(digits) == 10 || len(digits) == 11 {
		digits = "55" + digits
	}

	addr := digits + chatSuffix
	if !chatAddress.MatchString(addr) {
		return "", ErrInvalid
	}
	return addr, nil
}

// Valid reports whether s is already a well-formed chat address.
func Valid(s string) bool {
	return chatAddress.MatchString(s)
}

// Display strips the chat suffix, leaving the digits for printing.
func Display(addr string) string {
	return strings.TrimSuffix(addr, chatSuffix)
}
