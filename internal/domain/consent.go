package domain

import "time"

// ConsentGrant is a time-boxed authorization letting a partner view one
// identity's location and address. The client never deletes a grant; it only
// relabels it once expired.
type ConsentGrant struct {
	Alias     Alias
	Digipin   string
	Address   string
	Location  *GeoPoint
	Score     int
	ExpiresAt time.Time
}

// IsActive returns true while now is before the expiry instant.
func (g ConsentGrant) IsActive(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}

// Remaining returns the time left before expiry, clamped to zero.
func (g ConsentGrant) Remaining(now time.Time) time.Duration {
	d := g.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (g ConsentGrant) FocusKey() string   { return "grant:" + string(g.Alias) }
func (g ConsentGrant) FocusLabel() string { return string(g.Alias) + "\n" + g.Digipin }

func (g ConsentGrant) FocusPoint() (GeoPoint, bool) {
	if g.Location == nil {
		return GeoPoint{}, false
	}
	return *g.Location, true
}

// Partner is an organization that can receive consent grants. ID is the
// requester name the backend matches grants against.
type Partner struct {
	ID   string
	Name string
}

// DefaultPartners is the directory used when the backend cannot list partners.
var DefaultPartners = []Partner{
	{ID: "Amazon Logistics", Name: "Amazon Logistics"},
	{ID: "Zomato", Name: "Zomato Delivery"},
	{ID: "Uber", Name: "Uber Rides"},
	{ID: "Apollo", Name: "Apollo Ambulance"},
	{ID: "DHL", Name: "DHL Express"},
}
