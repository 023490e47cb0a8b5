// The auth package verifies login credentials against the loaded
// account records. A login attempt supplies a username and a plaintext
// password; the plaintext is hashed and the digest compared to the
// stored one. Failures are reported with a single generic error so a
// caller cannot tell an unknown username from a wrong password.
package auth

import (
  "errors"

  "github.com/golang/glog"

  "github.com/minikern/usermgr/users"
)

// ErrAuthFailed is the generic failure for a bad login attempt. It is
// deliberately the same for an unknown username and a wrong password,
// so that the login prompt cannot be used to enumerate usernames.
var ErrAuthFailed = errors.New("invalid username or password")

// ErrTooManyAttempts terminates a login after MaxLoginAttempts
// consecutive failures.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// MaxLoginAttempts bounds the consecutive failures allowed in one
// Login call. This bound is the system's only brute-force mitigation.
const MaxLoginAttempts = 3

// Authenticate checks one (username, plaintext) pair against the
// records. On success it returns the identity copied from the matching
// record; on any failure it returns ErrAuthFailed.
func Authenticate(username, plaintext string, uu *users.Users) (*users.CurrentUser, error) {
  u := uu.User(username)
  if u == nil {
    glog.V(2).Infof("login attempt for unknown user %q", username)
    return nil, ErrAuthFailed
  }
  if HashPassword(plaintext) != u.PasswordHash {
    glog.V(2).Infof("bad password for user %q", username)
    return nil, ErrAuthFailed
  }
  return &users.CurrentUser{Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

// A CredentialsFunc obtains one username/password attempt from the
// user. The surrounding interactive layer supplies the prompting.
type CredentialsFunc func() (username, plaintext string, err error)

// Login runs the bounded login loop: it asks creds for a pair, checks
// it, and retries on failure up to MaxLoginAttempts times. notify, if
// not nil, is called after each failed attempt so the surrounding
// layer can tell the user. After the last failure Login returns
// ErrTooManyAttempts; an error from creds is returned as-is.
func Login(uu *users.Users, creds CredentialsFunc, notify func()) (*Session, error) {
  for attempt := 0; attempt < MaxLoginAttempts; attempt++ {
    username, plaintext, err := creds()
    if err != nil {
      return nil, err
    }
    cu, err := Authenticate(username, plaintext, uu)
    if err == nil {
      return NewSession(*cu), nil
    }
    if notify != nil {
      notify()
    }
  }
  return nil, ErrTooManyAttempts
}
