package handler

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/middleware"
	"github.com/taskdesk/taskdesk/internal/api/view"
)

func init() {
	gob.Register(view.Flash{})
}

// Sessions reads and writes the web session that carries the logged-in
// user and pending flash messages.
type Sessions struct {
	name   string
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
}

// NewSessions configures the cookie name, lifetime and Secure flag used for
// every session written by the handlers.
func NewSessions(name string, ttl time.Duration, secure bool, log zerolog.Logger) *Sessions {
	return &Sessions{name: name, ttl: ttl, secure: secure, log: log}
}

// Name is the session cookie name.
func (s *Sessions) Name() string { return s.name }

func (s *Sessions) get(c echo.Context) *sessions.Session {
	sess, err := session.Get(s.name, c)
	if err != nil {
		// a tampered or expired cookie still yields a usable fresh session
		s.log.Debug().Err(err).Msg("discarding unreadable session")
	}
	if sess == nil {
		sess = sessions.NewSession(nil, s.name)
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	return sess
}

func (s *Sessions) save(c echo.Context, sess *sessions.Session) {
	if sess.Store() == nil {
		return
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		s.log.Error().Err(err).Msg("save session")
	}
}

// AddFlash queues a message for the next rendered page.
func (s *Sessions) AddFlash(c echo.Context, kind, msg string) {
	sess := s.get(c)
	sess.AddFlash(view.Flash{Kind: kind, Message: msg})
	s.save(c, sess)
}

// popFlashes returns and clears the queued flash messages.
func (s *Sessions) popFlashes(c echo.Context) []view.Flash {
	sess := s.get(c)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	s.save(c, sess)

	out := make([]view.Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(view.Flash); ok {
			out = append(out, fl)
		}
	}
	return out
}

// logIn stores the user in the session and sets the identity for the rest
// of the request.
func (s *Sessions) logIn(c echo.Context, userID, username string) {
	sess := s.get(c)
	sess.Values[middleware.KeyUserID] = userID
	sess.Values[middleware.KeyUsername] = username
	s.save(c, sess)
	middleware.SetIdentity(c, userID, username)
}

// logOut forgets the user but keeps the session so a flash can follow.
func (s *Sessions) logOut(c echo.Context) {
	sess := s.get(c)
	delete(sess.Values, middleware.KeyUserID)
	delete(sess.Values, middleware.KeyUsername)
	s.save(c, sess)
}
