package cart

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	defaultSessionCookie = "hog_cart"
	sessionLifetime      = 30 * 24 * time.Hour
)

// Sessions signs the cart session id into a cookie
type Sessions struct {
	name   string
	secure bool
	codec  *securecookie.SecureCookie
}

func NewSessions(cookieName string, hashKey []byte, secure bool) (*Sessions, error) {
	if len(hashKey) == 0 {
		return nil, errors.New("cart session: hash key is required")
	}
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(sessionLifetime.Seconds()))
	return &Sessions{name: cookieName, secure: secure, codec: codec}, nil
}

// SessionID returns the session id carried by r. ok is false when the cookie
// is missing or its signature does not verify.
func (s *Sessions) SessionID(r *http.Request) (id uuid.UUID, ok bool) {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return uuid.Nil, false
	}
	var raw string
	if err := s.codec.Decode(s.name, cookie.Value, &raw); err != nil {
		return uuid.Nil, false
	}
	id, err = uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Ensure returns the request's session id, issuing a new cookie when there is none
func (s *Sessions) Ensure(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if id, ok := s.SessionID(r); ok {
		return id, nil
	}
	id := uuid.New()
	encoded, err := s.codec.Encode(s.name, id.String())
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "encode cart session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
