// internal/phone/phone.go
package phone

import "strings"

// coreLength is how many trailing digits two numbers must share to be
// considered the same line across formatting variations.
const coreLength = 8

func digitsOnly(raw string) string {
    var b strings.Builder
    for _, r := range raw {
        if r >= '0' && r <= '9' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// DispatchNumber formats a raw phone number for the WhatsApp API "to" field:
// digits only, one leading zero stripped, default country code prepended when
// the number does not already carry it and is short enough to be national.
func DispatchNumber(raw, defaultCountryCode string) string {
    cleaned := digitsOnly(raw)

    if strings.HasPrefix(cleaned, "0") {
        cleaned = cleaned[1:]
    }

    if !strings.HasPrefix(cleaned, defaultCountryCode) && len(cleaned) <= 11 {
        cleaned = defaultCountryCode + cleaned
    }

    return cleaned
}

// MatchingCore reduces a phone number to its last 8 digits. Numbers stored
// with and without country code or leading zero still compare equal on the
// core. Shorter numbers keep whatever digits they have.
func MatchingCore(raw string) string {
    cleaned := digitsOnly(raw)
    if len(cleaned) <= coreLength {
        return cleaned
    }
    return cleaned[len(cleaned)-coreLength:]
}
