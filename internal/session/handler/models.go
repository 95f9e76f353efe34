package handler

import (
	"time"

	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/domain"
	"digipin/internal/session"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type viewRequest struct {
	View session.View `json:"view"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type reorderResponse struct {
	Moved bool `json:"moved"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	Active    bool          `json:"active"`
	ID        string        `json:"id,omitempty"`
	User      *userResponse `json:"user,omitempty"`
	View      session.View  `json:"view,omitempty"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
}

func toSessionResponse(s session.Snapshot) sessionResponse {
	started := s.StartedAt
	return sessionResponse{
		Active:    true,
		ID:        s.ID,
		User:      &userResponse{Email: s.User.Email, Name: s.User.Name, Role: string(s.User.Role)},
		View:      s.View,
		StartedAt: &started,
	}
}

type identityResponse struct {
	Alias    string           `json:"alias"`
	Badge    string           `json:"badge"`
	Digipin  string           `json:"digipin"`
	Address  string           `json:"address"`
	Location *domain.GeoPoint `json:"location,omitempty"`
	Locked   bool             `json:"locked"`
}

func toIdentityResponse(id domain.Identity) identityResponse {
	return identityResponse{
		Alias:    string(id.Alias),
		Badge:    id.Alias.Badge(),
		Digipin:  id.Digipin,
		Address:  id.Address,
		Location: id.Location,
		Locked:   id.Locked,
	}
}

func toIdentityList(ids []domain.Identity) []identityResponse {
	out := make([]identityResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, toIdentityResponse(id))
	}
	return out
}

type partnerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type grantResponse struct {
	Alias     string           `json:"alias"`
	Digipin   string           `json:"digipin"`
	Address   string           `json:"address"`
	Location  *domain.GeoPoint `json:"location,omitempty"`
	Score     int              `json:"score"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func toGrantResponse(g domain.ConsentGrant) grantResponse {
	return grantResponse{
		Alias:     string(g.Alias),
		Digipin:   g.Digipin,
		Address:   g.Address,
		Location:  g.Location,
		Score:     g.Score,
		ExpiresAt: g.ExpiresAt,
	}
}

type consentResponse struct {
	grantResponse
	Label   string `json:"label"`
	Expired bool   `json:"expired"`
}

func toConsentList(statuses []expiry.GrantStatus) []consentResponse {
	out := make([]consentResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, consentResponse{grantResponse: toGrantResponse(st.Grant), Label: st.Label, Expired: st.Expired})
	}
	return out
}

type resolvedResponse struct {
	Alias    string           `json:"alias"`
	Digipin  string           `json:"digipin"`
	Address  string           `json:"address"`
	Location *domain.GeoPoint `json:"location,omitempty"`
	Score    int              `json:"score"`
}

func toResolvedResponse(r backend.ResolvedAddress) resolvedResponse {
	return resolvedResponse{
		Alias:    string(r.Alias),
		Digipin:  r.Digipin,
		Address:  r.Address,
		Location: r.Location,
		Score:    r.Score,
	}
}
