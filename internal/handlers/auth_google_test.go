package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

const frontend = "http://frontend.test"

type fakeGoogle struct {
	*httptest.Server
	user googleUserInfo
}

// newFakeGoogle serves a token endpoint accepting code "good" and a userinfo
// endpoint that requires the issued access token.
func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	g := &fakeGoogle{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(g.user)
	})
	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Close)
	return g
}

func (g *fakeGoogle) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://api.test/api/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.URL + "/auth",
			TokenURL:  g.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"openid", "email", "profile"},
	}
}

func newGoogleServer(t *testing.T, g *fakeGoogle) *testServer {
	t.Helper()
	return newTestServerWith(t, func(d *Deps) {
		d.Google = g.config()
		d.GoogleUserInfoURL = g.URL + "/userinfo"
		d.FrontendBaseURL = frontend + "/"
	})
}

func cookieMap(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func (s *testServer) raw(t *testing.T, path string, cookies map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// start begins a sign-in and returns the state and the temporary cookies.
func (s *testServer) start(t *testing.T, g *fakeGoogle, query string) (string, map[string]string) {
	t.Helper()
	resp := s.raw(t, "/api/auth/google/start?"+query, nil)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(loc.String(), g.URL+"/auth"), loc.String())
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	jar := map[string]string{}
	for name, c := range cookieMap(resp) {
		assert.True(t, c.HttpOnly, name)
		jar[name] = c.Value
	}
	assert.Equal(t, state, jar[stateCookie])
	return state, jar
}

func TestGoogleSignInCreatesAccount(t *testing.T) {
	g := newFakeGoogle(t)
	g.user = googleUserInfo{Email: "Sari@Campus.ac.id", VerifiedEmail: true, Name: "Sari"}
	s := newGoogleServer(t, g)

	state, jar := s.start(t, g, "next=/dashboard&role=freelancer")
	assert.Equal(t, "freelancer", jar[roleCookie])

	resp := s.raw(t, "/api/auth/google/callback?code=good&state="+state, jar)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, frontend+"/dashboard", resp.Header.Get("Location"))

	got := cookieMap(resp)
	require.Contains(t, got, utils.CookieName)
	claims, err := utils.ParseJWT(testSecret, got[utils.CookieName].Value)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleFreelancer), claims.Role)
	assert.Empty(t, got[stateCookie].Value)

	_, env := s.do(t, http.MethodGet, "/api/me", got[utils.CookieName].Value, nil)
	var me struct {
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Role  models.Role `json:"role"`
	}
	decode(t, env, &me)
	assert.Equal(t, "sari@campus.ac.id", me.Email)
	assert.Equal(t, "Sari", me.Name)
	assert.Equal(t, models.RoleFreelancer, me.Role)

	prof, err := s.store.Profiles().FindFreelancer(context.Background(), uuid.MustParse(claims.UserID))
	require.NoError(t, err)
	assert.Equal(t, "Sari", prof.DisplayName)
}

func TestGoogleSignInExistingAccountKeepsRole(t *testing.T) {
	g := newFakeGoogle(t)
	g.user = googleUserInfo{Email: "acme@client.id", VerifiedEmail: true, Name: "Acme via Google"}
	s := newGoogleServer(t, g)
	existing := s.register(t, "Acme", "acme@client.id", "client")

	state, jar := s.start(t, g, "role=freelancer")
	resp := s.raw(t, "/api/auth/google/callback?code=good&state="+state, jar)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, frontend+"/", resp.Header.Get("Location"))

	claims, err := utils.ParseJWT(testSecret, cookieMap(resp)[utils.CookieName].Value)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, claims.UserID)
	assert.Equal(t, string(models.RoleClient), claims.Role)
}

func TestGoogleCallbackFailures(t *testing.T) {
	g := newFakeGoogle(t)
	g.user = googleUserInfo{Email: "nover@campus.ac.id", VerifiedEmail: false, Name: "No"}
	s := newGoogleServer(t, g)

	t.Run("state mismatch", func(t *testing.T) {
		_, jar := s.start(t, g, "")
		resp := s.raw(t, "/api/auth/google/callback?code=good&state=forged", jar)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.NotContains(t, cookieMap(resp), utils.CookieName)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		state, _ := s.start(t, g, "")
		resp := s.raw(t, "/api/auth/google/callback?code=good&state="+state, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("code rejected", func(t *testing.T) {
		state, jar := s.start(t, g, "")
		resp := s.raw(t, "/api/auth/google/callback?code=bad&state="+state, jar)
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), frontend+"/auth/login?err="))
		assert.NotContains(t, cookieMap(resp), utils.CookieName)
	})

	t.Run("unverified email", func(t *testing.T) {
		state, jar := s.start(t, g, "")
		resp := s.raw(t, "/api/auth/google/callback?code=good&state="+state, jar)
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/auth/login", loc.Path)
		assert.Contains(t, loc.Query().Get("err"), "verified email")
		_, err = s.store.Users().FindByEmail(context.Background(), "nover@campus.ac.id")
		assert.Error(t, err)
	})
}

func TestGoogleStartRejectsRole(t *testing.T) {
	s := newGoogleServer(t, newFakeGoogle(t))
	resp := s.raw(t, "/api/auth/google/start?role=admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSafeNext(t *testing.T) {
	for in, want := range map[string]string{
		"":                   "/",
		"/projects/42":       "/projects/42",
		"//evil.test/x":      "/",
		"https://evil.test":  "/",
		`/\evil.test`:        "/",
		"/dashboard?tab=new": "/dashboard?tab=new",
	} {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestGoogleRoutesOffWithoutConfig(t *testing.T) {
	s := newTestServer(t)
	resp := s.raw(t, "/api/auth/google/start", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
