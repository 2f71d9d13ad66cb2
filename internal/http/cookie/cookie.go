// cookie выдаёт и сбрасывает cookie сессии.
package cookie

import (
	"net/http"
	"time"
)

// Policy — атрибуты cookie сессии.
// Secure включается только в prod, остальные атрибуты фиксированы:
// HttpOnly, SameSite=Strict, Path "/", Max-Age = TTL сессии.
type Policy struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Issue ставит cookie со значением value (подписанный id сессии).
func (p Policy) Issue(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(p.TTL.Seconds()),
		Expires:  time.Now().Add(p.TTL).UTC(),
	})
}

// Clear просит браузер удалить cookie.
func (p Policy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}

// Read возвращает значение cookie или "" если её нет.
func (p Policy) Read(r *http.Request) string {
	c, err := r.Cookie(p.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
