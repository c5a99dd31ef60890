package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer and Audience pin tokens to this server; verification rejects
	// tokens minted for anything else.
	Issuer   = "unpatched-server"
	Audience = "unpatched-server-users"

	// TokenCookieName is the browser-facing twin of the Authorization
	// header. The cookie outlives the token on purpose: an expired token
	// in a live cookie still fails verification.
	TokenCookieName = "unpatched_token"

	tokenTTL     = 30 * 24 * time.Hour
	cookieMaxAge = 365 * 24 * 60 * 60
)

// TokenIssuer mints and verifies the server's HS256 operator tokens.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a TokenIssuer over the shared signing secret.
func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// Issue signs a token for the given operator email.
func (ti *TokenIssuer) Issue(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   email,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	return token, nil
}

// Verify parses and validates a token, enforcing the signing method and
// this server's audience and issuer. Returns the verified claims.
func (ti *TokenIssuer) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// TokenFromRequest extracts the raw token: the Authorization bearer header
// when present, the session cookie otherwise.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrInvalidToken
	}
	return cookie.Value, nil
}

// NewTokenCookie builds the login cookie carrying the signed token.
func NewTokenCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// NewLogoutCookie builds the cookie that clears the session: same
// attributes, empty value, immediate expiry.
func NewLogoutCookie() *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
