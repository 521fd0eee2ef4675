package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tengemart/internal/domain"
)

func TestLoginBindsSessionAndRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login/":
			jsonOut(w, map[string]string{"access": "acc-token", "refresh": "ref-token"})
		case "/users/profile/":
			if r.Header.Get("Authorization") != "Bearer acc-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			jsonOut(w, domain.User{ID: 1, Username: "aigerim", Role: domain.RoleCustomer})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	app, sessions := newApp(t, backend.URL)

	resp := postForm(t, app, "/login", "", "username=aigerim&password=Passw0rd1")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("redirect to %q, want /", loc)
	}

	sid := cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie missing")
	}
	st := sessions.Get(sid)
	if st == nil || st.Token != "acc-token" {
		t.Fatalf("session not bound: %+v", st)
	}
	if st.User == nil || st.User.Role != domain.RoleCustomer {
		t.Fatalf("profile not resolved: %+v", st.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		jsonOut(w, map[string]string{"detail": "No active account found"})
	}))
	defer backend.Close()

	app, sessions := newApp(t, backend.URL)

	resp := postForm(t, app, "/login", "", "username=aigerim&password=wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(readBody(t, resp), "Invalid username or password") {
		t.Error("login error message missing")
	}
	if sid := cookieValue(resp, "sid"); sid != "" && sessions.Get(sid) != nil {
		t.Error("failed login must not bind a session")
	}
}

func TestLoginRejectsMalformedInput(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called for malformed input")
	}))
	defer backend.Close()

	app, _ := newApp(t, backend.URL)
	resp := postForm(t, app, "/login", "", "username=a&password=")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	var gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/register/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b := make([]byte, 512)
		n, _ := r.Body.Read(b)
		gotBody = string(b[:n])
		w.WriteHeader(http.StatusCreated)
	}))
	defer backend.Close()

	app, _ := newApp(t, backend.URL)
	resp := postForm(t, app, "/register", "", "username=newbie&email=n%40example.kz&password=Passw0rd1")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q, want /login", loc)
	}
	if !strings.Contains(gotBody, `"newbie"`) {
		t.Errorf("registration payload missing username: %s", gotBody)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer backend.Close()

	app, sessions := newApp(t, backend.URL)
	sid := signIn(sessions, domain.User{ID: 1, Username: "aigerim", Role: domain.RoleCustomer})

	resp := postForm(t, app, "/logout", sid, "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if sessions.Get(sid) != nil {
		t.Error("session survived logout")
	}
}

func TestStaleTokenDegradesToLogin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		jsonOut(w, map[string]string{"detail": "Token expired"})
	}))
	defer backend.Close()

	app, sessions := newApp(t, backend.URL)
	sid := signIn(sessions, domain.User{ID: 1, Username: "aigerim", Role: domain.RoleCustomer})

	resp := get(t, app, "/profile", sid)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected silent redirect to login, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q, want /login", loc)
	}
	if sessions.Get(sid) != nil {
		t.Error("stale session should be dropped")
	}
}
