package payments

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

type tokenRequest struct {
	Token string `json:"token"`
}

// tokenFromRequest extracts the gateway token, preferring a JSON body, then
// a form-encoded body, then the query string. Gateways differ in how they
// deliver the same token.
func tokenFromRequest(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/json" {
		var body tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Token != "" {
			return strings.TrimSpace(body.Token)
		}
		return ""
	}

	if token := r.PostFormValue("token"); token != "" {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// wantsHTML reports whether the caller asked for a browser-style redirect
// instead of a JSON acknowledgment.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
