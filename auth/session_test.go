package auth

import (
  "testing"
  "time"

  "github.com/stretchr/testify/assert"

  "github.com/minikern/usermgr/users"
)

func TestSession(t *testing.T) {
  base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
  saved := timeNow
  timeNow = func() time.Time { return base }
  defer func() { timeNow = saved }()

  cu := users.CurrentUser{Username: "alice", IsAdmin: true}
  s := NewSession(cu)
  assert.NotEmpty(t, s.ID)
  assert.Equal(t, base, s.Started())
  assert.Equal(t, cu, s.User)
  assert.True(t, s.Active())
  assert.True(t, s.IsSelf("alice"))
  assert.False(t, s.IsSelf("bob"))

  s.End()
  assert.False(t, s.Active())
}

func TestSessionIDsAreUnique(t *testing.T) {
  cu := users.CurrentUser{Username: "alice"}
  s1 := NewSession(cu)
  s2 := NewSession(cu)
  assert.NotEqual(t, s1.ID, s2.ID)
}
