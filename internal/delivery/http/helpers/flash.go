package helpers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName is the cookie carrying notices across a redirect.
const FlashCookieName = "flash"

// Notice categories.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a one-shot message shown to the user.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SetFlash stores notices for the next request.
func SetFlash(w http.ResponseWriter, notices ...Notice) {
	data, err := json.Marshal(notices)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns pending notices and clears the cookie. A malformed cookie
// is dropped silently. The result is never nil.
func PopFlash(w http.ResponseWriter, r *http.Request) []Notice {
	notices := []Notice{}
	c, err := r.Cookie(FlashCookieName)
	if err != nil {
		return notices
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return notices
	}
	var stored []Notice
	if err := json.Unmarshal(data, &stored); err != nil {
		return notices
	}
	return append(notices, stored...)
}
