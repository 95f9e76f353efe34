package session

import (
	"context"
	"strings"

	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/consent/poller"
	"digipin/internal/domain"
	"digipin/internal/mapsync"
	dErrors "digipin/pkg/domain-errors"
)

func (c *Controller) partner() (*state, error) {
	st, err := c.session()
	if err != nil {
		return nil, err
	}
	if st.user.Role != domain.RolePartner {
		return nil, ErrNotPartner
	}
	return st, nil
}

// onConsents feeds every accepted list to the tracker and drops a focused
// grant the backend no longer reports. It runs on the poller goroutine and
// must not take the controller locks used around teardown.
func (c *Controller) onConsents(u poller.Update) {
	c.tracker.SetGrants(u.Grants)
	keys := make(map[string]bool, len(u.Grants))
	for _, g := range u.Grants {
		keys[g.FocusKey()] = true
	}
	c.maps.Revalidate(func(key string) bool {
		return !strings.HasPrefix(key, "grant:") || keys[key]
	})
}

// Consents returns the visible grants with their expiry labels.
func (c *Controller) Consents() ([]expiry.GrantStatus, error) {
	if _, err := c.partner(); err != nil {
		return nil, err
	}
	return c.tracker.Statuses(), nil
}

// RefreshConsents fetches the consent list now. A failure keeps the list.
func (c *Controller) RefreshConsents(ctx context.Context) error {
	if _, err := c.partner(); err != nil {
		return err
	}
	if err := c.poller.Refresh(ctx); err != nil {
		return c.fail(ctx, err)
	}
	return nil
}

// PreviewGrant focuses the map on the grant at index of the visible list.
func (c *Controller) PreviewGrant(ctx context.Context, index int) (domain.ConsentGrant, error) {
	if _, err := c.partner(); err != nil {
		return domain.ConsentGrant{}, err
	}
	statuses := c.tracker.Statuses()
	if index < 0 || index >= len(statuses) {
		return domain.ConsentGrant{}, dErrors.New(dErrors.CodeStaleSelection, "Consent no longer listed")
	}
	g := statuses[index].Grant
	if err := c.maps.Select(g, mapsync.ZoomConsent); err != nil {
		return domain.ConsentGrant{}, dErrors.Wrap(err, dErrors.CodeInternal, "Map unavailable")
	}
	return g, nil
}

// resolvedFocus previews a resolved address under the same key as its grant.
type resolvedFocus struct {
	backend.ResolvedAddress
}

func (r resolvedFocus) FocusKey() string   { return "grant:" + string(r.Alias) }
func (r resolvedFocus) FocusLabel() string { return string(r.Alias) + "\n" + r.Digipin }
func (r resolvedFocus) FocusPoint() (domain.GeoPoint, bool) {
	if r.Location == nil {
		return domain.GeoPoint{}, false
	}
	return *r.Location, true
}

// ResolveAddress asks the backend for an alias this partner holds consent
// for and focuses it. A result for an ended session is discarded.
func (c *Controller) ResolveAddress(ctx context.Context, alias domain.Alias) (backend.ResolvedAddress, error) {
	st, err := c.partner()
	if err != nil {
		return backend.ResolvedAddress{}, err
	}
	if _, perr := domain.ParseAlias(string(alias)); perr != nil {
		return backend.ResolvedAddress{}, c.fail(ctx, dErrors.Wrap(perr, dErrors.CodeValidation, "Invalid alias"))
	}
	res, err := c.backend.ResolveAddress(ctx, alias, partnerName(st.user))
	if err != nil {
		return backend.ResolvedAddress{}, c.fail(ctx, err)
	}
	if !c.isCurrent(st) {
		return backend.ResolvedAddress{}, ErrSessionChanged
	}
	if err := c.maps.Select(resolvedFocus{res}, mapsync.ZoomConsent); err != nil {
		c.logger.WarnContext(ctx, "map focus failed", "alias", alias, "error", err)
	}
	return res, nil
}
