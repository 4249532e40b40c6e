package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuth guards admin routes. password may be plain text or a bcrypt hash.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !adminCredentials(r, username, password) {
				requireAuth(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken accepts the static API token, or admin basic credentials so
// that the admin never needs two headers.
func BearerToken(token, username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if raw, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
				if subtle.ConstantTimeCompare([]byte(raw), []byte(token)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			if strings.HasPrefix(authHeader, "Basic ") && adminCredentials(r, username, password) {
				next.ServeHTTP(w, r)
				return
			}

			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func adminCredentials(r *http.Request, username, password string) bool {
	if username == "" || password == "" {
		return false
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 {
		return false
	}

	return CheckPassword(password, pass)
}

// CheckPassword compares a plain attempt against the configured password,
// which is either a bcrypt hash or plain text.
func CheckPassword(configured, attempt string) bool {
	if isBcrypt(configured) {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(attempt)) == 1
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Admin Area"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
