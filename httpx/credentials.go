package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mbolis/recruit/config"
	"github.com/mbolis/recruit/database"
	"github.com/mbolis/recruit/log"
)

// Claims carried by every access token.
const (
	ClaimUserID = "user_id"
	ClaimRoles  = "roles"
	ClaimName   = "name"
)

// refresh tokens outlive access tokens by a wide margin
const refreshTTL = 30 * 24 * time.Hour

type credentialsVerifier struct {
	db *sql.DB
}

func CredentialsVerifier(db *sql.DB) oauth.CredentialsVerifier {
	return &credentialsVerifier{db}
}

// NewBearerServer issues tokens for users logging in with email and password.
func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	err := database.CheckPassword(r.Context(), cs.db, username, password)
	if err != nil {
		log.Debugf("login.validate_user: %s: %s", username, err)
	}
	return err
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES (?, ?, ?, ?)",
		credential,
		tokenID,
		refreshTokenID,
		time.Now().UTC().Add(refreshTTL),
	)
	return err
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	var expiration time.Time
	var ok bool

	cs.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration, 1`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration, &ok)
	if !ok {
		return errors.New("could not refresh")
	}

	if expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	u, err := database.UserByEmail(r.Context(), cs.db, credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimUserID: strconv.Itoa(u.ID),
		ClaimRoles:  string(u.Role),
		ClaimName:   u.Name,
	}, nil
}
func (cs *credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	u, err := database.UserByEmail(r.Context(), cs.db, credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimUserID: strconv.Itoa(u.ID),
		ClaimRoles:  string(u.Role),
	}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
