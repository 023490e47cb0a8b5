package auth

import (
  "time"

  "github.com/google/uuid"

  "github.com/minikern/usermgr/users"
)

var (
  timeNow = time.Now            // Allow overriding for unit testing.
)

// A Session is one authenticated interval: it starts at a successful
// login and ends on logout, exit, or a mutation that invalidates the
// login (a change to the current account's password or admin flag, or
// deletion of the current account).
type Session struct {
  ID string             // Unique per login, for log correlation.
  User users.CurrentUser
  started time.Time
  ended bool
}

func NewSession(user users.CurrentUser) *Session {
  return &Session{
    ID: uuid.NewString(),
    User: user,
    started: timeNow(),
  }
}

func (s *Session) Started() time.Time {
  return s.started
}

// Active reports whether the session is still usable.
func (s *Session) Active() bool {
  return !s.ended
}

// End marks the session as over. The caller must discard the identity
// and force a fresh login to continue.
func (s *Session) End() {
  s.ended = true
}

// IsSelf reports whether the named account is the one this session is
// logged in as.
func (s *Session) IsSelf(username string) bool {
  return s.User.Username == username
}
