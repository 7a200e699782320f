package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/recruit/httpx"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
)

// Principal is the authenticated caller, read from the token claims.
type Principal struct {
	UserID int
	Email  string
	Name   string
	Role   model.Role
}

func (p Principal) Is(roles ...model.Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

type principalKey struct{}

// CurrentUser returns the principal set by Authenticated or CookieAuth.
func CurrentUser(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey{}).(Principal)
	return p, ok
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Authenticated checks the bearer token and exposes its claims as a Principal.
func Authenticated(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), principal).Handler(next)
	}
}

func principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := principalFromClaims(r)
		if err != nil {
			httpx.LogJSONStatusMsg(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.claims", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func principalFromClaims(r *http.Request) (Principal, error) {
	claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	credential, _ := r.Context().Value(oauth.CredentialContext).(string)

	id, err := strconv.Atoi(claims[httpx.ClaimUserID])
	if err != nil {
		return Principal{}, errors.New("token carries no user")
	}
	role := model.Role(strings.Split(claims[httpx.ClaimRoles], ",")[0])
	if !role.Valid() {
		return Principal{}, errors.New("token carries no role")
	}
	return Principal{UserID: id, Email: credential, Name: claims[httpx.ClaimName], Role: role}, nil
}

// RequireRole lets through only principals holding one of roles.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentUser(r)
			if !ok || !p.Is(roles...) {
				httpx.LogJSONStatus(w, r, http.StatusForbidden, log.DebugLevel, "auth.role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieAuth authenticates browser pages with the token cookies set by the
// login page, refreshing an expired access token when a refresh token is
// available. Without valid cookies it redirects to /login.
func CookieAuth(bearerServer *oauth.BearerServer, secret string) func(http.Handler) http.Handler {
	authorize := oauth.Authorize(secret, nil)

	// probe runs the bearer check alone, so the page handler runs only once
	probe := func(r *http.Request, token string) *http.Request {
		var authed *http.Request
		r.Header.Set("authorization", "Bearer "+token)
		authorize(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			authed = r
		})).ServeHTTP(httpx.NewResponseBuffer(), r)
		if authed == nil {
			return nil
		}
		p, err := principalFromClaims(authed)
		if err != nil {
			return nil
		}
		return authed.WithContext(WithPrincipal(authed.Context(), p))
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(AccessTokenCookie)
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				httpx.LogInternalError(w, "auth.cookie.access", err)
				return
			}
			if err == nil {
				if authed := probe(r, token.Value); authed != nil {
					h.ServeHTTP(w, authed)
					return
				}
			}

			loginLocation := "/login?goto=" + url.QueryEscape(r.RequestURI)

			// token was empty or unauthorized
			refreshToken, err := r.Cookie(RefreshTokenCookie)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					httpx.LogInternalError(w, "auth.cookie.refresh", err)
					return
				}

				// refresh token was empty: redirect to login page
				http.Redirect(w, r, loginLocation, http.StatusSeeOther)
				return
			}

			tokens, status, err := RefreshTokens(bearerServer, refreshToken.Value)
			if err != nil {
				httpx.LogInternalError(w, "auth.refresh", err)
				return
			}
			if status == http.StatusUnauthorized {
				ClearTokenCookies(w)
				http.Redirect(w, r, loginLocation, http.StatusSeeOther)
				return
			}
			if status != http.StatusOK {
				httpx.LogStatus(w, status, log.WarnLevel, "auth.refresh.status")
				return
			}

			SetTokenCookies(w, tokens)
			authed := probe(r, tokens.AccessToken)
			if authed == nil {
				ClearTokenCookies(w)
				http.Redirect(w, r, loginLocation, http.StatusSeeOther)
				return
			}
			h.ServeHTTP(w, authed)
		})
	}
}

// Tokens is the part of the token endpoint response the pages need.
type Tokens struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
}

// RefreshTokens runs a refresh_token grant against the bearer server.
func RefreshTokens(bearerServer *oauth.BearerServer, refreshToken string) (Tokens, int, error) {
	return grant(bearerServer, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
}

// PasswordTokens runs a password grant against the bearer server.
func PasswordTokens(bearerServer *oauth.BearerServer, username, password string) (Tokens, int, error) {
	return grant(bearerServer, url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
}

// oauth.BearerServer only speaks HTTP, so the grant goes through a buffered
// fake request
func grant(bearerServer *oauth.BearerServer, body url.Values) (tokens Tokens, status int, err error) {
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

	resp := httpx.NewResponseBuffer()
	bearerServer.UserCredentials(resp, req)
	status = resp.Status()
	if status != http.StatusOK {
		return
	}

	err = json.Unmarshal(resp.Body(), &tokens)
	return
}

func SetTokenCookies(w http.ResponseWriter, tokens Tokens) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    tokens.AccessToken,
		MaxAge:   int(tokens.ExpiresIn),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Path:     "/",
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
