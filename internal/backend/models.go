package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"digipin/internal/domain"
)

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name,omitempty"`
	Role     domain.Role `json:"role"`
}

// Credentials authenticate an existing account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MintRequest registers a new digital address for a resident.
type MintRequest struct {
	AliasSuffix string `json:"alias_suffix"`
	UserEmail   string `json:"user_email"`
	AddressText string `json:"address_text"`
}

// MintResult is the backend's answer to a successful registration.
type MintResult struct {
	Alias    domain.Alias
	Digipin  string
	Location *domain.GeoPoint
}

// GrantRequest issues a consent grant.
type GrantRequest struct {
	Alias           domain.Alias `json:"digital_address_alias"`
	RequesterID     string       `json:"requester_id"`
	DurationMinutes int          `json:"duration_minutes"`
}

// ResolvedAddress is what a partner sees for an alias it holds consent for.
type ResolvedAddress struct {
	Alias    domain.Alias
	Digipin  string
	Address  string
	Location *domain.GeoPoint
	Score    int
}

type loginResponse struct {
	User struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

type addressRecord struct {
	Alias          string   `json:"alias"`
	Digipin        string   `json:"digipin"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	Address        string   `json:"address"`
	RawAddressText string   `json:"raw_address_text"`
	Locked         *bool    `json:"locked"`
	Score          int      `json:"score"`
}

func (r addressRecord) toIdentityRecord() domain.IdentityRecord {
	text := r.Address
	if text == "" {
		text = r.RawAddressText
	}
	return domain.IdentityRecord{
		Identity: domain.Identity{
			Alias:    domain.Alias(r.Alias),
			Digipin:  r.Digipin,
			Address:  text,
			Location: domain.NewGeoPoint(r.Lat, r.Lon),
		},
		Locked: r.Locked,
	}
}

func (r addressRecord) toResolved() ResolvedAddress {
	text := r.Address
	if text == "" {
		text = r.RawAddressText
	}
	return ResolvedAddress{
		Alias:    domain.Alias(r.Alias),
		Digipin:  r.Digipin,
		Address:  text,
		Location: domain.NewGeoPoint(r.Lat, r.Lon),
		Score:    r.Score,
	}
}

type mintResponse struct {
	DigitalAddress string   `json:"digital_address"`
	Digipin        string   `json:"digipin"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
}

type consentRecord struct {
	Alias     string   `json:"alias"`
	Digipin   string   `json:"digipin"`
	Address   string   `json:"address"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Score     int      `json:"score"`
	ExpiresAt string   `json:"expires_at"`
}

func (r consentRecord) toGrant(loc *time.Location) (domain.ConsentGrant, error) {
	expiresAt, err := parseTimestamp(r.ExpiresAt, loc)
	if err != nil {
		return domain.ConsentGrant{}, fmt.Errorf("grant %s: %w", r.Alias, err)
	}
	return domain.ConsentGrant{
		Alias:     domain.Alias(r.Alias),
		Digipin:   r.Digipin,
		Address:   r.Address,
		Location:  domain.NewGeoPoint(r.Lat, r.Lon),
		Score:     r.Score,
		ExpiresAt: expiresAt,
	}, nil
}

type partnerRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// errorBody matches the backend's {"detail": ...}. Detail is a string for
// handled errors and a list of objects for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (e errorBody) message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseTimestamp accepts RFC3339 or zone-less ISO timestamps; the latter are
// interpreted in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(timestampLayouts[0], s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
