package auth

import (
  "errors"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/minikern/usermgr/users"
)

func testUsers() *users.Users {
  return users.NewUsers([]users.User{
    {Username: "root", PasswordHash: HashPassword("hunter2"), IsAdmin: true},
    {Username: "bob", PasswordHash: HashPassword("bobpw"), IsAdmin: false},
  })
}

func TestHashPassword(t *testing.T) {
  d1 := HashPassword("hunter2")
  d2 := HashPassword("hunter2")
  assert.Equal(t, d1, d2, "digest must be deterministic")
  assert.Len(t, d1, 64, "sha256 hex digest is 64 characters")
  assert.NotEqual(t, d1, HashPassword("hunter3"))
  assert.NotContains(t, d1, "hunter2")
}

func TestAuthenticate(t *testing.T) {
  uu := testUsers()

  cu, err := Authenticate("root", "hunter2", uu)
  require.NoError(t, err)
  assert.Equal(t, "root", cu.Username)
  assert.True(t, cu.IsAdmin)

  cu, err = Authenticate("bob", "bobpw", uu)
  require.NoError(t, err)
  assert.Equal(t, "bob", cu.Username)
  assert.False(t, cu.IsAdmin)
}

func TestAuthenticateFailureIsGeneric(t *testing.T) {
  uu := testUsers()

  _, errUnknown := Authenticate("nobody", "whatever", uu)
  _, errWrongPw := Authenticate("root", "wrong", uu)
  // Unknown user and wrong password must be indistinguishable.
  assert.ErrorIs(t, errUnknown, ErrAuthFailed)
  assert.ErrorIs(t, errWrongPw, ErrAuthFailed)
  assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestAuthenticateCaseSensitiveUsername(t *testing.T) {
  _, err := Authenticate("Root", "hunter2", testUsers())
  assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestLoginRetriesThenSucceeds(t *testing.T) {
  uu := testUsers()
  attempts := [][2]string{
    {"root", "wrong"},
    {"nobody", "x"},
    {"root", "hunter2"},
  }
  i := 0
  failures := 0
  sess, err := Login(uu, func() (string, string, error) {
    a := attempts[i]
    i++
    return a[0], a[1], nil
  }, func() { failures++ })
  require.NoError(t, err)
  assert.Equal(t, "root", sess.User.Username)
  assert.Equal(t, 2, failures)
  assert.True(t, sess.Active())
}

func TestLoginTooManyAttempts(t *testing.T) {
  uu := testUsers()
  calls := 0
  sess, err := Login(uu, func() (string, string, error) {
    calls++
    return "root", "wrong", nil
  }, nil)
  assert.Nil(t, sess)
  assert.ErrorIs(t, err, ErrTooManyAttempts)
  assert.Equal(t, MaxLoginAttempts, calls)
}

func TestLoginCredsError(t *testing.T) {
  wantErr := errors.New("input closed")
  _, err := Login(testUsers(), func() (string, string, error) {
    return "", "", wantErr
  }, nil)
  assert.ErrorIs(t, err, wantErr)
}
