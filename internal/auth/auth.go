package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	RoleMember       = "member"
	RoleCommissioner = "commissioner"
)

// UserClaims is the authenticated identity attached to each request.
// PlayerID links the account to a roster player; empty for accounts not
// yet tied to a roster spot.
type UserClaims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	PlayerID string `json:"playerId,omitempty"`
}

func (c *UserClaims) IsCommissioner() bool {
	return c != nil && c.Role == RoleCommissioner
}

type contextKey string

const UserKey contextKey = "user"

// tokenPayload is the JSON payload embedded in a signed token.
type tokenPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	PlayerID string `json:"playerId,omitempty"`
	Exp      int64  `json:"exp"`
}

// GenerateToken creates an HMAC-signed token for an authenticated user.
// Format: local.<base64url(json-payload)>.<base64url(hmac-sha256)>
func GenerateToken(claims *UserClaims, secret string) (string, error) {
	payload := tokenPayload{
		Email:    claims.Email,
		Name:     claims.Name,
		Role:     claims.Role,
		PlayerID: claims.PlayerID,
		Exp:      time.Now().Add(30 * 24 * time.Hour).Unix(),
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadBytes)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadB64))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return "local." + payloadB64 + "." + sig, nil
}

// ValidateToken verifies and decodes a signed token.
func ValidateToken(token, secret string) (*UserClaims, error) {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 || parts[0] != "local" {
		return nil, fmt.Errorf("invalid token format")
	}

	payloadB64 := parts[1]
	sigB64 := parts[2]

	// Verify HMAC
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payloadB64))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sigB64), []byte(expectedSig)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	// Decode payload
	payloadBytes, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("invalid token payload")
	}

	var payload tokenPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("invalid token payload")
	}

	if time.Now().Unix() > payload.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return &UserClaims{
		Email:    payload.Email,
		Name:     payload.Name,
		Role:     payload.Role,
		PlayerID: payload.PlayerID,
	}, nil
}

// Middleware returns an HTTP middleware that verifies the Authorization header.
// Paths starting with /api/auth/ bypass authentication.
// When devMode is true, any request is allowed through with a stub commissioner identity.
func Middleware(devMode bool, commissionerEmails map[string]bool, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for public auth endpoints
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				next.ServeHTTP(w, r)
				return
			}

			if devMode {
				claims := &UserClaims{
					Email: "dev@localhost",
					Name:  "Dev User",
					Role:  RoleCommissioner,
				}
				ctx := context.WithValue(r.Context(), UserKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"error":"invalid authorization format, use Bearer token"}`, http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				http.Error(w, fmt.Sprintf(`{"error":"unauthorized: %s"}`, err.Error()), http.StatusUnauthorized)
				return
			}

			if commissionerEmails[strings.ToLower(claims.Email)] {
				claims.Role = RoleCommissioner
			}

			ctx := context.WithValue(r.Context(), UserKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user claims from the request context.
func GetUser(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(UserKey).(*UserClaims)
	return claims
}

// RequireCommissioner is an HTTP middleware that returns 403 unless the
// user holds the commissioner role.
func RequireCommissioner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if !user.IsCommissioner() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "commissioner access required"})
			return
		}
		next(w, r)
	}
}
