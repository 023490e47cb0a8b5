package users

// A User is one stored account record: the username, the hex digest of
// the account's password, and the admin flag. The plaintext password is
// never held in memory or on disk, only its digest.
type User struct {
  Username string
  PasswordHash string
  IsAdmin bool
}

// A CurrentUser is the identity produced by a successful login.
// It is a copy of the matching record's fields, scoped to one session,
// and is discarded on logout, exit, or a mutation that invalidates
// the session.
type CurrentUser struct {
  Username string
  IsAdmin bool
}
