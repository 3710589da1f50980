package phone

import "testing"

func TestDispatchNumber(t *testing.T) {
    tests := []struct {
        name string
        in   string
        want string
    }{
        {"already has country code", "5511987654321", "5511987654321"},
        {"national number gets code", "11987654321", "5511987654321"},
        {"leading zero stripped", "011987654321", "5511987654321"},
        {"punctuation removed", "(11) 98765-4321", "5511987654321"},
        {"plus prefix removed", "+55 11 98765-4321", "5511987654321"},
        {"long foreign number untouched", "4915123456789012", "4915123456789012"},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got := DispatchNumber(tt.in, "55")
            if got != tt.want {
                t.Errorf("DispatchNumber(%q) = %q, want %q", tt.in, got, tt.want)
            }
        })
    }
}

func TestDispatchNumberOtherCountryCode(t *testing.T) {
    got := DispatchNumber("0712345678", "254")
    if got != "254712345678" {
        t.Errorf("expected 254712345678, got %s", got)
    }
}

func TestMatchingCore(t *testing.T) {
    tests := []struct {
        in   string
        want string
    }{
        {"5511987654321", "87654321"},
        {"11987654321", "87654321"},
        {"+55 (11) 98765-4321", "87654321"},
        {"87654321", "87654321"},
        {"4321", "4321"},
        {"", ""},
    }

    for _, tt := range tests {
        got := MatchingCore(tt.in)
        if got != tt.want {
            t.Errorf("MatchingCore(%q) = %q, want %q", tt.in, got, tt.want)
        }
        if len(got) > 8 {
            t.Errorf("MatchingCore(%q) longer than 8 digits: %q", tt.in, got)
        }
    }
}

func TestMatchingCoreEquivalence(t *testing.T) {
    variants := []string{"5511987654321", "11987654321", "011987654321", "+55 11 98765-4321"}
    for _, v := range variants {
        if MatchingCore(v) != MatchingCore(variants[0]) {
            t.Errorf("variant %q does not match %q", v, variants[0])
        }
    }
}
