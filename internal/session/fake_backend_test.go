package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// fakePlatform is an in-memory stand-in for the platform API, served over
// httptest so the real backend client is exercised.
type fakePlatform struct {
	mu        sync.Mutex
	now       func() time.Time
	users     map[string]fakeUser
	addresses []fakeAddress
	consents  []fakeConsent
	failLists bool
	srv       *httptest.Server
}

type fakeUser struct {
	Email, Password, Name, Role string
}

type fakeAddress struct {
	Alias, Owner, Digipin, Text string
	Lat, Lon                    float64
}

type fakeConsent struct {
	Alias, Requester string
	ExpiresAt        time.Time
}

func newFakePlatform(now func() time.Time) *fakePlatform {
	f := &fakePlatform{now: now, users: make(map[string]fakeUser)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", f.register)
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("GET /user/my-addresses/{email}", f.myAddresses)
	mux.HandleFunc("POST /register-address", f.registerAddress)
	mux.HandleFunc("POST /grant-consent", f.grant)
	mux.HandleFunc("GET /partner/my-consents", f.partnerConsents)
	mux.HandleFunc("GET /partners", f.partners)
	mux.HandleFunc("GET /resolve-address/{alias}", f.resolve)
	f.srv = httptest.NewServer(mux)
	return f
}

func (f *fakePlatform) Close() { f.srv.Close() }

func (f *fakePlatform) setFailLists(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLists = fail
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	reply(w, status, map[string]string{"detail": msg})
}

func (f *fakePlatform) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[in.Email]; ok {
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	f.users[in.Email] = fakeUser{Email: in.Email, Password: in.Password, Name: in.FullName, Role: in.Role}
	reply(w, http.StatusOK, map[string]string{"status": "User created"})
}

func (f *fakePlatform) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[in.Email]
	if !ok || u.Password != in.Password {
		detail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	reply(w, http.StatusOK, map[string]any{
		"status": "Login Successful",
		"user":   map[string]string{"email": u.Email, "name": u.Name, "role": u.Role},
	})
}

func (f *fakePlatform) myAddresses(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists {
		detail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	out := []map[string]any{}
	for _, a := range f.addresses {
		if a.Owner == r.PathValue("email") {
			out = append(out, map[string]any{
				"alias": a.Alias, "digipin": a.Digipin, "lat": a.Lat, "lon": a.Lon, "raw_address_text": a.Text,
			})
		}
	}
	reply(w, http.StatusOK, out)
}

func (f *fakePlatform) registerAddress(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AliasSuffix string `json:"alias_suffix"`
		UserEmail   string `json:"user_email"`
		AddressText string `json:"address_text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	handle, _, _ := strings.Cut(in.UserEmail, "@")
	alias := handle + "@" + in.AliasSuffix
	for _, a := range f.addresses {
		if a.Alias == alias {
			detail(w, http.StatusBadRequest, fmt.Sprintf("Identity '%s' already exists. Try a different suffix.", alias))
			return
		}
	}
	a := fakeAddress{
		Alias: alias, Owner: in.UserEmail, Text: in.AddressText,
		Digipin: fmt.Sprintf("4P3-JK8-%04d", len(f.addresses)),
		Lat:     12.9716, Lon: 77.5946,
	}
	f.addresses = append(f.addresses, a)
	reply(w, http.StatusOK, map[string]any{
		"status": "Created", "digital_address": a.Alias, "digipin": a.Digipin, "lat": a.Lat, "lon": a.Lon,
	})
}

func (f *fakePlatform) grant(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Alias    string `json:"digital_address_alias"`
		Partner  string `json:"requester_id"`
		Duration int    `json:"duration_minutes"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.findAddress(in.Alias); !ok {
		detail(w, http.StatusNotFound, "Address not found")
		return
	}
	f.consents = append(f.consents, fakeConsent{
		Alias: in.Alias, Requester: in.Partner,
		ExpiresAt: f.now().Add(time.Duration(in.Duration) * time.Minute),
	})
	reply(w, http.StatusOK, map[string]string{"status": "Consent Granted"})
}

func (f *fakePlatform) findAddress(alias string) (fakeAddress, bool) {
	for _, a := range f.addresses {
		if a.Alias == alias {
			return a, true
		}
	}
	return fakeAddress{}, false
}

func (f *fakePlatform) partnerConsents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists {
		detail(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	partner := r.URL.Query().Get("partner_name")
	out := []map[string]any{}
	for _, c := range f.consents {
		if c.Requester != partner || !c.ExpiresAt.After(f.now()) {
			continue
		}
		a, _ := f.findAddress(c.Alias)
		out = append(out, map[string]any{
			"alias": a.Alias, "digipin": a.Digipin, "address": a.Text, "lat": a.Lat, "lon": a.Lon,
			"score": 20, "expires_at": c.ExpiresAt.UTC().Format("2006-01-02T15:04:05.999999"),
		})
	}
	reply(w, http.StatusOK, out)
}

func (f *fakePlatform) partners(w http.ResponseWriter, _ *http.Request) {
	reply(w, http.StatusOK, []map[string]string{
		{"id": "Amazon Logistics", "name": "Amazon Logistics"},
		{"id": "DHL", "name": "DHL Express"},
	})
}

func (f *fakePlatform) resolve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	alias := r.PathValue("alias")
	a, ok := f.findAddress(alias)
	if !ok {
		detail(w, http.StatusNotFound, "Not found")
		return
	}
	for _, c := range f.consents {
		if c.Alias == alias && c.Requester == r.Header.Get("Requester-Id") && c.ExpiresAt.After(f.now()) {
			reply(w, http.StatusOK, map[string]any{
				"alias": a.Alias, "digipin": a.Digipin, "address": a.Text, "lat": a.Lat, "lon": a.Lon, "score": 20,
			})
			return
		}
	}
	detail(w, http.StatusForbidden, "Access Denied")
}
