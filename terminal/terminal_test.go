package terminal

import (
  "bytes"
  "path/filepath"
  "strings"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/minikern/usermgr/account"
  "github.com/minikern/usermgr/auth"
  "github.com/minikern/usermgr/store"
  "github.com/minikern/usermgr/users"
)

// newTestTerminal builds a terminal over a seeded file store, with
// scripted input. Masked password reads consume plain lines.
func newTestTerminal(t *testing.T, input string) (*Terminal, store.Store, *bytes.Buffer) {
  t.Helper()
  st := store.NewFile(filepath.Join(t.TempDir(), "users.pw"))
  err := st.Save(users.NewUsers([]users.User{
    {Username: "root", PasswordHash: auth.HashPassword("hunter2"), IsAdmin: true},
    {Username: "alice", PasswordHash: auth.HashPassword("alicepw"), IsAdmin: true},
    {Username: "bob", PasswordHash: auth.HashPassword("bobpw"), IsAdmin: false},
  }))
  require.NoError(t, err)
  out := &bytes.Buffer{}
  term := NewWithIO(st, account.NewService(st), strings.NewReader(input), out)
  return term, st, out
}

func session(name string, admin bool) *auth.Session {
  return auth.NewSession(users.CurrentUser{Username: name, IsAdmin: admin})
}

func TestInitialSetup(t *testing.T) {
  st := store.NewFile(filepath.Join(t.TempDir(), "users.pw"))
  out := &bytes.Buffer{}
  input := "bad name\nroot\nhunter2\nnope\nhunter2\nhunter2\n"
  term := NewWithIO(st, account.NewService(st), strings.NewReader(input), out)

  u, err := term.InitialSetup()
  require.NoError(t, err)
  assert.Equal(t, "root", u.Username)
  assert.True(t, u.IsAdmin, "first account is forced admin")

  assert.Contains(t, out.String(), "Username cannot contain spaces or special characters.")
  assert.Contains(t, out.String(), "Passwords do not match. Please try again.")
  assert.Contains(t, out.String(), "Admin user 'root' created successfully.")

  uu, err := st.Load()
  require.NoError(t, err)
  require.Equal(t, 1, uu.Count())
  assert.Equal(t, auth.HashPassword("hunter2"), uu.Root().PasswordHash)
}

func TestLoginRetryThenSuccess(t *testing.T) {
  term, st, out := newTestTerminal(t, "root\nwrong\nroot\nhunter2\n")
  uu, err := st.Load()
  require.NoError(t, err)

  sess, err := term.Login(uu)
  require.NoError(t, err)
  assert.Equal(t, "root", sess.User.Username)
  assert.True(t, sess.User.IsAdmin)
  assert.Contains(t, out.String(), "Invalid username or password. Please try again.")
  assert.Contains(t, out.String(), "Login successful!")
}

func TestLoginTooManyAttempts(t *testing.T) {
  term, st, _ := newTestTerminal(t, "root\nwrong\nroot\nwrong\nroot\nwrong\n")
  uu, err := st.Load()
  require.NoError(t, err)

  _, err = term.Login(uu)
  assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
}

func TestListUsersTree(t *testing.T) {
  term, _, out := newTestTerminal(t, "")
  require.NoError(t, term.listUsers())
  want := "User List\n" +
      "├── root (Admin)\n" +
      "├── alice (Admin)\n" +
      "└── bob (User)\n"
  assert.Equal(t, want, out.String())
}

func TestRunHelpAndExit(t *testing.T) {
  term, _, out := newTestTerminal(t, "help\nexit\n")
  exit, err := term.Run(session("root", true))
  require.NoError(t, err)
  assert.True(t, exit)
  assert.Contains(t, out.String(), "Available commands:")
  assert.Contains(t, out.String(), "Logging out. Goodbye!")
}

func TestRunLogout(t *testing.T) {
  term, _, _ := newTestTerminal(t, "logout\n")
  sess := session("bob", false)
  exit, err := term.Run(sess)
  require.NoError(t, err)
  assert.False(t, exit)
  assert.False(t, sess.Active())
}

func TestRunUnknownCommand(t *testing.T) {
  term, _, out := newTestTerminal(t, "frobnicate\nexit\n")
  _, err := term.Run(session("root", true))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Unknown command: 'frobnicate'.")
}

func TestRunAddUser(t *testing.T) {
  term, st, out := newTestTerminal(t, "addusr\nalice\ncarol\ncarolpw\ncarolpw\ny\nexit\n")
  exit, err := term.Run(session("alice", true))
  require.NoError(t, err)
  assert.True(t, exit)
  assert.Contains(t, out.String(), "User 'alice' already exists. Try a different username.")
  assert.Contains(t, out.String(), "User 'carol' created with admin privileges.")

  uu, err := st.Load()
  require.NoError(t, err)
  require.Equal(t, 4, uu.Count())
  carol := uu.User("carol")
  require.NotNil(t, carol)
  assert.True(t, carol.IsAdmin)
  assert.Equal(t, "carol", uu.At(3).Username, "new accounts append at the end")
}

func TestRunAddUserRequiresAdmin(t *testing.T) {
  term, _, out := newTestTerminal(t, "addusr\nexit\n")
  _, err := term.Run(session("bob", false))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "You must be an admin to add users.")
}

func TestRunChangeOwnPasswordLogsOut(t *testing.T) {
  term, st, out := newTestTerminal(t, "chusr\nbob\nnewpw\nnewpw\n")
  sess := session("bob", false)
  exit, err := term.Run(sess)
  require.NoError(t, err)
  assert.False(t, exit, "self change forces logout, not exit")
  assert.False(t, sess.Active())
  assert.Contains(t, out.String(), "Your password has been updated successfully.")
  assert.Contains(t, out.String(), "Please log in again.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.Equal(t, auth.HashPassword("newpw"), uu.User("bob").PasswordHash)
}

func TestRunNonAdminCannotChangeOthers(t *testing.T) {
  term, st, out := newTestTerminal(t, "chusr\nalice\nexit\n")
  _, err := term.Run(session("bob", false))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Non-admin users can only change their own password.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.Equal(t, auth.HashPassword("alicepw"), uu.User("alice").PasswordHash)
}

func TestRunRevokeOwnAdminWithConfirmation(t *testing.T) {
  // alice revokes her own admin flag: warning, confirmation, then the
  // change ends her session.
  term, st, out := newTestTerminal(t, "chusr\nalice\ny\ny\nn\n")
  sess := session("alice", true)
  exit, err := term.Run(sess)
  require.NoError(t, err)
  assert.False(t, exit)
  assert.False(t, sess.Active())
  assert.Contains(t, out.String(), "Warning: You are removing your own admin privileges.")
  assert.Contains(t, out.String(), "User 'alice' admin privileges have been removed.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.False(t, uu.User("alice").IsAdmin)
  assert.True(t, uu.Root().IsAdmin, "root keeps the system from going adminless")
}

func TestRunRevokeOwnAdminDeclined(t *testing.T) {
  term, st, out := newTestTerminal(t, "chusr\nalice\ny\nn\nn\nexit\n")
  sess := session("alice", true)
  _, err := term.Run(sess)
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Admin privilege change cancelled.")
  assert.Contains(t, out.String(), "No changes were made to user 'alice'.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.True(t, uu.User("alice").IsAdmin)
}

func TestRunRootAdminStatusUntouchable(t *testing.T) {
  term, _, out := newTestTerminal(t, "chusr\nroot\nexit\n")
  _, err := term.Run(session("alice", true))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Note: This is the root user. Admin status cannot be changed.")
  assert.Contains(t, out.String(), "Only the root user can change root's password.")
}

func TestRunRootChangesOwnPassword(t *testing.T) {
  term, st, out := newTestTerminal(t, "chusr\nroot\ny\nnewroot\nnewroot\n")
  sess := session("root", true)
  exit, err := term.Run(sess)
  require.NoError(t, err)
  assert.False(t, exit)
  assert.Contains(t, out.String(), "Root password updated successfully.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.Equal(t, auth.HashPassword("newroot"), uu.Root().PasswordHash)
}

func TestRunDeleteUser(t *testing.T) {
  term, st, out := newTestTerminal(t, "delusr\nbob\nhunter2\nexit\n")
  exit, err := term.Run(session("alice", true))
  require.NoError(t, err)
  assert.True(t, exit)
  assert.Contains(t, out.String(), "User 'bob' has been deleted.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.Equal(t, 2, uu.Count())
  assert.False(t, uu.Contains("bob"))
  assert.Equal(t, "root", uu.Root().Username)
}

func TestRunDeleteWrongProof(t *testing.T) {
  term, st, out := newTestTerminal(t, "delusr\nbob\nwrongpw\nexit\n")
  _, err := term.Run(session("alice", true))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Incorrect password. User deletion cancelled.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.True(t, uu.Contains("bob"))
}

func TestRunDeleteRootRefused(t *testing.T) {
  term, st, out := newTestTerminal(t, "delusr\nroot\nexit\n")
  _, err := term.Run(session("alice", true))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Cannot delete the first user (root admin).")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.True(t, uu.Contains("root"))
}

func TestRunDeleteSelfLogsOut(t *testing.T) {
  term, st, out := newTestTerminal(t, "delusr\nalice\nhunter2\n")
  sess := session("alice", true)
  exit, err := term.Run(sess)
  require.NoError(t, err)
  assert.False(t, exit)
  assert.False(t, sess.Active())
  assert.Contains(t, out.String(), "Your account has been deleted. Logging out.")

  uu, err := st.Load()
  require.NoError(t, err)
  assert.False(t, uu.Contains("alice"))
}

func TestRunDeleteRefusedWithOneAccount(t *testing.T) {
  st := store.NewFile(filepath.Join(t.TempDir(), "users.pw"))
  require.NoError(t, st.Save(users.NewUsers([]users.User{
    {Username: "root", PasswordHash: auth.HashPassword("hunter2"), IsAdmin: true},
  })))
  out := &bytes.Buffer{}
  term := NewWithIO(st, account.NewService(st), strings.NewReader("delusr\nexit\n"), out)
  _, err := term.Run(session("root", true))
  require.NoError(t, err)
  assert.Contains(t, out.String(), "Cannot delete users when there's only one user in the system.")
}
