package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-league-auth/internal/autherr"
	"github.com/pribylovaa/go-league-auth/internal/gate"
	apierrors "github.com/pribylovaa/go-league-auth/internal/http/errors"
	"github.com/pribylovaa/go-league-auth/internal/pkg/log"
)

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Sign in</title></head>
<body>
{{if .Failed}}<p role="alert">Invalid email or password.</p>
{{end}}<form method="post" action="{{.Action}}">
<input type="email" name="email" autocomplete="username" required>
<input type="password" name="password" autocomplete="current-password" required>
<button type="submit">Sign in</button>
</form>
</body></html>
`))

// LoginPage — GET /login: форма входа. next переносится в action формы.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	action := h.LoginPath
	if next := safeNext(q.Get("next")); next != "/" {
		action += "?next=" + url.QueryEscape(next)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = loginPage.Execute(w, struct {
		Failed bool
		Action string
	}{Failed: q.Get("error") != "", Action: action})
}

// LoginForm — POST /login (форма или JSON). Успех: cookie сессии и 303 на next или "/".
// Любой отказ: 303 на страницу входа с error=1 без деталей.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LoginForm"

	next := safeNext(r.URL.Query().Get("next"))

	in, err := h.readLogin(r)
	if err != nil {
		http.Redirect(w, r, h.failedLoginURL(next), http.StatusSeeOther)
		return
	}

	sess, err := h.Auth.LoginSession(r.Context(), in.Email, in.Password)
	if err != nil {
		log.From(r.Context()).Info("interactive_login_rejected",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		http.Redirect(w, r, h.failedLoginURL(next), http.StatusSeeOther)
		return
	}

	h.Cookie.Issue(w, h.Signer.Sign(sess.ID))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// LogoutForm — POST /logout: удаляет сессию, сбрасывает cookie, 303 на страницу входа.
func (h *Handlers) LogoutForm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.LogoutForm"

	if id, ok := h.Signer.Verify(h.Cookie.Read(r)); ok {
		if err := h.Auth.LogoutSession(r.Context(), id); err != nil {
			log.From(r.Context()).Error("interactive_logout_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	h.Cookie.Clear(w)
	http.Redirect(w, r, h.LoginPath, http.StatusSeeOther)
}

// Session — GET /session за cookie-гейтом.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	s, ok := gate.SessionFrom(r.Context())
	if !ok {
		apierrors.WriteAuthError(w, r, autherr.E("handlers.Session", autherr.KindMissingCredential, errors.New("no session in context")))
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		User:      identityResponse(s.Identity()),
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
}

func (h *Handlers) readLogin(r *http.Request) (LoginRequest, error) {
	var in LoginRequest

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := h.decodeValid(r, &in); err != nil {
			return LoginRequest{}, err
		}
		return in, nil
	}

	if err := r.ParseForm(); err != nil {
		return LoginRequest{}, err
	}
	in.Email = r.PostForm.Get("email")
	in.Password = r.PostForm.Get("password")

	if err := h.validate.Struct(&in); err != nil {
		return LoginRequest{}, err
	}

	return in, nil
}

func (h *Handlers) failedLoginURL(next string) string {
	u := h.LoginPath + "?error=1"
	if next != "/" {
		u += "&next=" + url.QueryEscape(next)
	}
	return u
}

// safeNext пропускает только локальные пути, чтобы редирект после входа
// не уводил на чужой хост.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
