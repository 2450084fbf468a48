package httpx

import (
	"net/http"
	"strings"
)

// BearerToken returns the credential from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// BearerFromRequest reads the bearer credential off the request headers.
func BearerFromRequest(r *http.Request) (string, bool) {
	return BearerToken(r.Header.Get("Authorization"))
}

// WriteBearerError writes an RFC 6750 challenge with the given status.
func WriteBearerError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
