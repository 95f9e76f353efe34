// Package handler exposes the session controller over a local JSON control
// API so the client can be driven without a UI.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"digipin/internal/address"
	"digipin/internal/backend"
	"digipin/internal/consent/expiry"
	"digipin/internal/domain"
	"digipin/internal/mapsync"
	"digipin/internal/notify"
	"digipin/internal/session"
	dErrors "digipin/pkg/domain-errors"
	"digipin/pkg/platform/httputil"
	"digipin/pkg/requestcontext"
)

// HeaderConfirm must be "yes" for a deletion to proceed.
const HeaderConfirm = "X-Confirm"

// Service is the session surface the control API drives.
type Service interface {
	Register(ctx context.Context, req backend.RegisterRequest) error
	Login(ctx context.Context, creds backend.Credentials) (session.Snapshot, error)
	Logout(ctx context.Context)
	Current() (session.Snapshot, bool)
	SetView(ctx context.Context, v session.View) error

	Identities() ([]domain.Identity, error)
	MintIdentity(ctx context.Context, in session.MintInput) (domain.Identity, error)
	RefreshAddresses(ctx context.Context) error
	Reorder(from, to int) (bool, error)
	ToggleLock(ctx context.Context, index int) (domain.Identity, error)
	RemoveIdentity(ctx context.Context, index int, confirm address.Confirmer) (domain.Identity, error)
	PreviewIdentity(ctx context.Context, index int) (domain.Identity, error)
	GrantConsent(ctx context.Context, in session.GrantInput) error
	Partners() ([]domain.Partner, error)

	Consents() ([]expiry.GrantStatus, error)
	RefreshConsents(ctx context.Context) error
	PreviewGrant(ctx context.Context, index int) (domain.ConsentGrant, error)
	ResolveAddress(ctx context.Context, alias domain.Alias) (backend.ResolvedAddress, error)

	Focus() mapsync.Focus
	ClearFocus() error
	Notification() (notify.Notification, bool)
}

// Handler serves the control API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register registers the control routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/session", h.handleCurrent)
	r.Post("/session/login", h.handleLogin)
	r.Post("/session/register", h.handleRegister)
	r.Post("/session/logout", h.handleLogout)
	r.Put("/session/view", h.handleSetView)

	r.Get("/identities", h.handleListIdentities)
	r.Post("/identities", h.handleMint)
	r.Post("/identities/refresh", h.handleRefreshIdentities)
	r.Post("/identities/reorder", h.handleReorder)
	r.Post("/identities/{index}/lock", h.handleToggleLock)
	r.Delete("/identities/{index}", h.handleRemove)
	r.Post("/identities/{index}/preview", h.handlePreviewIdentity)
	r.Post("/consents", h.handleGrant)
	r.Get("/partners", h.handlePartners)

	r.Get("/partner/consents", h.handleListConsents)
	r.Post("/partner/consents/refresh", h.handleRefreshConsents)
	r.Post("/partner/consents/{index}/preview", h.handlePreviewGrant)
	r.Get("/resolve/{alias}", h.handleResolve)

	r.Get("/focus", h.handleFocus)
	r.Delete("/focus", h.handleClearFocus)
	r.Get("/notification", h.handleNotification)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.svc.Current()
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, sessionResponse{Active: false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if !h.decode(w, r, &creds) {
		return
	}
	snap, err := h.svc.Login(r.Context(), creds)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.svc.Register(r.Context(), backend.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.writeError(w, r, "register", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.SetView(r.Context(), req.View); err != nil {
		h.writeError(w, r, "set view", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListIdentities(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Identities()
	if err != nil {
		h.writeError(w, r, "list identities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityList(ids))
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var in session.MintInput
	if !h.decode(w, r, &in) {
		return
	}
	id, err := h.svc.MintIdentity(r.Context(), in)
	if err != nil {
		h.writeError(w, r, "mint identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIdentityResponse(id))
}

func (h *Handler) handleRefreshIdentities(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshAddresses(r.Context()); err != nil {
		h.writeError(w, r, "refresh identities", err)
		return
	}
	h.handleListIdentities(w, r)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	moved, err := h.svc.Reorder(req.From, req.To)
	if err != nil {
		h.writeError(w, r, "reorder identities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reorderResponse{Moved: moved})
}

func (h *Handler) handleToggleLock(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	id, err := h.svc.ToggleLock(r.Context(), index)
	if err != nil {
		h.writeError(w, r, "toggle lock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(id))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	confirmed := r.Header.Get(HeaderConfirm) == "yes"
	confirm := address.ConfirmFunc(func(context.Context, domain.Identity) bool { return confirmed })
	id, err := h.svc.RemoveIdentity(r.Context(), index, confirm)
	if err != nil {
		h.writeError(w, r, "remove identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(id))
}

func (h *Handler) handlePreviewIdentity(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	id, err := h.svc.PreviewIdentity(r.Context(), index)
	if err != nil {
		h.writeError(w, r, "preview identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(id))
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	var in session.GrantInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.svc.GrantConsent(r.Context(), in); err != nil {
		h.writeError(w, r, "grant consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.svc.Partners()
	if err != nil {
		h.writeError(w, r, "list partners", err)
		return
	}
	out := make([]partnerResponse, 0, len(partners))
	for _, p := range partners {
		out = append(out, partnerResponse{ID: p.ID, Name: p.Name})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.Consents()
	if err != nil {
		h.writeError(w, r, "list consents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConsentList(statuses))
}

func (h *Handler) handleRefreshConsents(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshConsents(r.Context()); err != nil {
		h.writeError(w, r, "refresh consents", err)
		return
	}
	h.handleListConsents(w, r)
}

func (h *Handler) handlePreviewGrant(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	g, err := h.svc.PreviewGrant(r.Context(), index)
	if err != nil {
		h.writeError(w, r, "preview grant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGrantResponse(g))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ResolveAddress(r.Context(), domain.Alias(chi.URLParam(r, "alias")))
	if err != nil {
		h.writeError(w, r, "resolve address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResolvedResponse(res))
}

func (h *Handler) handleFocus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.svc.Focus())
}

func (h *Handler) handleClearFocus(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearFocus(); err != nil {
		h.writeError(w, r, "clear focus", dErrors.Wrap(err, dErrors.CodeInternal, "Map unavailable"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotification(w http.ResponseWriter, _ *http.Request) {
	n, ok := h.svc.Notification()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid control request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid index"))
		return 0, false
	}
	return index, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "control request failed",
			"request_id", requestcontext.RequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	} else {
		h.logger.DebugContext(ctx, "control request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"operation", op,
			"code", dErrors.CodeOf(err),
		)
	}
	httputil.WriteError(w, err)
}
