package domain

import (
	"fmt"
	"strings"
)

// Suffix is the part of an alias after '@'.
type Suffix string

// Built-in suffixes offered at registration. Any other non-empty handle is a
// custom suffix.
const (
	SuffixHome   Suffix = "home"
	SuffixWork   Suffix = "work"
	SuffixShop   Suffix = "shop"
	SuffixOffice Suffix = "office"
)

// SuffixCustom selects a free-form suffix at registration.
const SuffixCustom = "other"

// StandardSuffixes lists the built-in suffixes in display order.
var StandardSuffixes = []Suffix{SuffixHome, SuffixWork, SuffixShop, SuffixOffice}

// IsStandard reports whether s is one of the built-in suffixes.
func (s Suffix) IsStandard() bool {
	for _, std := range StandardSuffixes {
		if s == std {
			return true
		}
	}
	return false
}

// Alias is the human readable handle@suffix label of an Identity.
type Alias string

// NewAlias builds handle@suffix. Both parts must be non-empty and free of '@'
// and whitespace.
func NewAlias(handle string, suffix Suffix) (Alias, error) {
	if err := validatePart("handle", handle); err != nil {
		return "", err
	}
	if err := validatePart("suffix", string(suffix)); err != nil {
		return "", err
	}
	return Alias(handle + "@" + string(suffix)), nil
}

// ParseAlias splits a handle@suffix string.
func ParseAlias(s string) (Alias, error) {
	handle, suffix, ok := strings.Cut(s, "@")
	if !ok {
		return "", fmt.Errorf("alias %q: missing '@'", s)
	}
	return NewAlias(handle, Suffix(suffix))
}

func validatePart(name, v string) error {
	if v == "" {
		return fmt.Errorf("%s is empty", name)
	}
	if strings.ContainsAny(v, "@ \t\n") {
		return fmt.Errorf("%s %q contains '@' or whitespace", name, v)
	}
	return nil
}

// Handle returns the part before '@'.
func (a Alias) Handle() string {
	h, _, _ := strings.Cut(string(a), "@")
	return h
}

// Suffix returns the part after '@'.
func (a Alias) Suffix() Suffix {
	_, s, _ := strings.Cut(string(a), "@")
	return Suffix(s)
}

// Badge is the two-letter uppercase tag shown for an identity ("HO" for home).
func (a Alias) Badge() string {
	s := []rune(string(a.Suffix()))
	if len(s) > 2 {
		s = s[:2]
	}
	return strings.ToUpper(string(s))
}

func (a Alias) String() string { return string(a) }

// HandleFromEmail returns the local part of an email, which is the handle of
// every alias a resident mints.
func HandleFromEmail(email string) string {
	h, _, _ := strings.Cut(email, "@")
	return h
}

// Identity is a resident-owned digital address.
type Identity struct {
	Alias    Alias
	Digipin  string
	Address  string
	Location *GeoPoint
	Locked   bool
}

// FocusKey identifies the identity for map selection.
func (i Identity) FocusKey() string { return "identity:" + string(i.Alias) }

// FocusLabel is the marker label for the identity.
func (i Identity) FocusLabel() string { return string(i.Alias) }

// FocusPoint returns the identity's location, if minted.
func (i Identity) FocusPoint() (GeoPoint, bool) {
	if i.Location == nil {
		return GeoPoint{}, false
	}
	return *i.Location, true
}

// IdentityRecord is an identity as reported by the backend. Locked is nil
// when the backend does not track lock state.
type IdentityRecord struct {
	Identity Identity
	Locked   *bool
}
