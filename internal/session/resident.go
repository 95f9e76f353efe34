package session

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/domain"
	"digipin/internal/mapsync"
	dErrors "digipin/pkg/domain-errors"
)

// MsgLockedIdentity blocks grants on a locked identity.
const MsgLockedIdentity = "This identity is LOCKED. Unlock it first."

// MintInput registers a new identity. Suffix is a built-in suffix or
// domain.SuffixCustom, in which case CustomSuffix is used.
type MintInput struct {
	Suffix       string `json:"suffix"`
	CustomSuffix string `json:"custom_suffix,omitempty"`
	AddressText  string `json:"address_text"`
}

// GrantInput issues a consent grant to a partner for one identity.
type GrantInput struct {
	Alias           domain.Alias `json:"alias"`
	PartnerID       string       `json:"partner_id"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
}

// bootstrapResident loads the identity list and the partner directory
// concurrently. Neither failure blocks the login.
func (c *Controller) bootstrapResident(ctx context.Context, st *state) {
	var partners []domain.Partner
	var g errgroup.Group
	g.Go(func() error {
		return st.store.Refresh(ctx, c.fetchAddresses(st))
	})
	g.Go(func() error {
		list, err := c.backend.Partners(ctx)
		if err != nil || len(list) == 0 {
			c.logger.DebugContext(ctx, "partner directory unavailable; using built-in list", "error", err)
			return nil
		}
		partners = list
		return nil
	})
	if err := g.Wait(); err != nil {
		c.logger.WarnContext(ctx, "resident bootstrap incomplete", "session_id", st.id, "error", err)
	}
	if partners != nil {
		c.mu.Lock()
		if c.state == st {
			st.partners = partners
		}
		c.mu.Unlock()
	}
}

func (c *Controller) fetchAddresses(st *state) address.FetchFunc {
	return func(ctx context.Context) ([]domain.IdentityRecord, error) {
		return c.backend.MyAddresses(ctx, st.user.Email)
	}
}

func (c *Controller) resident() (*state, error) {
	st, err := c.session()
	if err != nil {
		return nil, err
	}
	if st.user.Role != domain.RoleResident {
		return nil, ErrNotResident
	}
	return st, nil
}

// Identities returns the resident's identities in display order.
func (c *Controller) Identities() ([]domain.Identity, error) {
	st, err := c.resident()
	if err != nil {
		return nil, err
	}
	return st.store.List(), nil
}

// Partners returns the partner directory used by the consent manager.
func (c *Controller) Partners() ([]domain.Partner, error) {
	st, err := c.resident()
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Partner(nil), st.partners...), nil
}

// RefreshAddresses reloads the identity list. A failure keeps the current
// list and is only logged.
func (c *Controller) RefreshAddresses(ctx context.Context) error {
	st, err := c.resident()
	if err != nil {
		return err
	}
	if err := st.store.Refresh(ctx, c.fetchAddresses(st)); err != nil {
		return err
	}
	if c.isCurrent(st) {
		c.revalidateIdentities(st)
	}
	return nil
}

// MintIdentity registers an identity with the backend and appends it.
func (c *Controller) MintIdentity(ctx context.Context, in MintInput) (domain.Identity, error) {
	st, err := c.resident()
	if err != nil {
		return domain.Identity{}, err
	}
	text := strings.TrimSpace(in.AddressText)
	if text == "" {
		return domain.Identity{}, c.fail(ctx, dErrors.New(dErrors.CodeValidation, "Address required"))
	}
	suffix := strings.TrimSpace(in.Suffix)
	if suffix == domain.SuffixCustom {
		suffix = strings.TrimSpace(in.CustomSuffix)
	}
	if suffix == "" {
		return domain.Identity{}, c.fail(ctx, dErrors.New(dErrors.CodeValidation, "Handle name required"))
	}
	alias, err := domain.NewAlias(st.user.Handle(), domain.Suffix(suffix))
	if err != nil {
		return domain.Identity{}, c.fail(ctx, dErrors.Wrap(err, dErrors.CodeValidation, "Invalid handle name"))
	}
	if _, _, exists := st.store.Find(alias); exists {
		return domain.Identity{}, c.fail(ctx, dErrors.New(dErrors.CodeConflict, "Identity "+string(alias)+" already exists"))
	}

	res, err := c.backend.RegisterAddress(ctx, backend.MintRequest{
		AliasSuffix: suffix,
		UserEmail:   st.user.Email,
		AddressText: text,
	})
	if err != nil {
		return domain.Identity{}, c.fail(ctx, err)
	}
	if !c.isCurrent(st) {
		return domain.Identity{}, ErrSessionChanged
	}

	identity := domain.Identity{Alias: res.Alias, Digipin: res.Digipin, Address: text, Location: res.Location}
	if identity.Alias == "" {
		identity.Alias = alias
	}
	if err := st.store.Append(identity); err != nil {
		return domain.Identity{}, c.fail(ctx, err)
	}
	c.metrics.IncMinted()
	c.notifier.Success(ctx, "Identity Minted!")
	if err := c.maps.Select(identity, mapsync.ZoomAddress); err != nil {
		c.logger.WarnContext(ctx, "map focus failed", "alias", identity.Alias, "error", err)
	}
	return identity, nil
}

// Reorder moves an identity in the list.
func (c *Controller) Reorder(from, to int) (bool, error) {
	st, err := c.resident()
	if err != nil {
		return false, err
	}
	return st.store.Reorder(from, to), nil
}

// ToggleLock flips the lock on the identity at index.
func (c *Controller) ToggleLock(ctx context.Context, index int) (domain.Identity, error) {
	st, err := c.resident()
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := st.store.ToggleLock(ctx, index)
	if err != nil {
		return domain.Identity{}, c.fail(ctx, err)
	}
	return id, nil
}

// RemoveIdentity deletes the identity at index once confirmed. A focused
// identity that is removed is defocused.
func (c *Controller) RemoveIdentity(ctx context.Context, index int, confirm address.Confirmer) (domain.Identity, error) {
	st, err := c.resident()
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := st.store.Remove(ctx, index, confirm)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotConfirmed) {
			c.fail(ctx, err)
		}
		return domain.Identity{}, err
	}
	c.revalidateIdentities(st)
	return id, nil
}

// PreviewIdentity focuses the map on the identity at index. The consent
// manager previews at a wider zoom.
func (c *Controller) PreviewIdentity(ctx context.Context, index int) (domain.Identity, error) {
	st, err := c.resident()
	if err != nil {
		return domain.Identity{}, err
	}
	id, ok := st.store.At(index)
	if !ok {
		return domain.Identity{}, address.ErrStaleIndex
	}
	zoom := mapsync.ZoomAddress
	c.mu.RLock()
	if st.view == ViewConsent {
		zoom = mapsync.ZoomConsent
	}
	c.mu.RUnlock()
	if err := c.maps.Select(id, zoom); err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "Map unavailable")
	}
	return id, nil
}

// GrantConsent lets a partner see one identity for a fixed duration. Locked
// identities cannot be granted.
func (c *Controller) GrantConsent(ctx context.Context, in GrantInput) error {
	st, err := c.resident()
	if err != nil {
		return err
	}
	if in.Alias == "" || strings.TrimSpace(in.PartnerID) == "" {
		return c.fail(ctx, dErrors.New(dErrors.CodeValidation, "Fill all fields"))
	}
	id, _, ok := st.store.Find(in.Alias)
	if !ok {
		return c.fail(ctx, dErrors.New(dErrors.CodeNotFound, "Identity not found"))
	}
	if id.Locked {
		return c.fail(ctx, dErrors.New(dErrors.CodeForbidden, MsgLockedIdentity))
	}
	minutes := in.DurationMinutes
	if minutes <= 0 {
		minutes = c.grantMinutes
	}

	err = c.backend.GrantConsent(ctx, backend.GrantRequest{
		Alias:           id.Alias,
		RequesterID:     in.PartnerID,
		DurationMinutes: minutes,
	})
	if err != nil {
		return c.fail(ctx, err)
	}
	c.metrics.IncGranted()
	c.notifier.Success(ctx, "Access granted to "+c.partnerDisplayName(st, in.PartnerID))
	return nil
}

func (c *Controller) partnerDisplayName(st *state, id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range st.partners {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

// revalidateIdentities drops a focused identity that is no longer listed.
func (c *Controller) revalidateIdentities(st *state) {
	c.maps.Revalidate(func(key string) bool {
		if !strings.HasPrefix(key, "identity:") {
			return true
		}
		_, _, ok := st.store.Find(domain.Alias(strings.TrimPrefix(key, "identity:")))
		return ok
	})
}
