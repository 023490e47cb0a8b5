// The terminal package is the interactive surface: the login prompts,
// the command loop, and the per-command dialogs. It holds no policy of
// its own; every mutation it collects from the user is classified by
// the policy layer and applied by the account service, and the
// terminal only renders the results.
package terminal

import (
  "bufio"
  "io"
  "os"
  "strings"

  "github.com/minikern/usermgr/account"
  "github.com/minikern/usermgr/auth"
  "github.com/minikern/usermgr/store"
  "github.com/minikern/usermgr/users"
)

type Terminal struct {
  st store.Store
  accounts *account.Service
  in *bufio.Reader
  out io.Writer
  readPassword func() (string, error)  // Test seam for masked input.
}

func New(st store.Store, accounts *account.Service) *Terminal {
  t := &Terminal{
    st: st,
    accounts: accounts,
    in: bufio.NewReader(os.Stdin),
    out: os.Stdout,
  }
  t.readPassword = t.readPasswordTerminal
  return t
}

// NewWithIO is New with explicit input and output streams. Masked
// password reads come from in as plain lines.
func NewWithIO(st store.Store, accounts *account.Service, in io.Reader, out io.Writer) *Terminal {
  t := &Terminal{
    st: st,
    accounts: accounts,
    in: bufio.NewReader(in),
    out: out,
  }
  t.readPassword = func() (string, error) {
    line, err := t.in.ReadString('\n')
    if err != nil && line == "" {
      return "", err
    }
    return trimEOL(line), nil
  }
  return t
}

func trimEOL(line string) string {
  for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
    line = line[:len(line)-1]
  }
  return line
}

// InitialSetup creates the first account interactively. It is invoked
// only when the store is empty; the created account is always admin
// and becomes the root account.
func (t *Terminal) InitialSetup() (*users.User, error) {
  t.println("No accounts found.")
  t.println()
  t.println("Create a new admin user")
  t.separator()

  var username string
  for {
    name, err := t.promptLine("Username: > ")
    if err != nil {
      return nil, err
    }
    if verr := account.ValidateUsername(users.Empty(), name); verr != nil {
      t.explainUsername(name)
      continue
    }
    username = name
    break
  }

  password, err := t.confirmedPassword("Password")
  if err != nil {
    return nil, err
  }
  u, err := t.accounts.InitialSetup(username, password)
  if err != nil {
    return nil, err
  }
  t.printf("Admin user '%s' created successfully.\n", username)
  return u, nil
}

func (t *Terminal) explainUsername(name string) {
  if name == "" {
    t.println("Username cannot be empty.")
  } else {
    t.println("Username cannot contain spaces or special characters.")
  }
}

// Login runs the bounded login dialog against the given records and
// returns the new session, or auth.ErrTooManyAttempts after the last
// failure.
func (t *Terminal) Login(uu *users.Users) (*auth.Session, error) {
  t.separator()
  t.println("Login")
  sess, err := auth.Login(uu, func() (string, string, error) {
    username, err := t.promptLine("Username: > ")
    if err != nil {
      return "", "", err
    }
    password, err := t.promptPassword("Password: > ")
    if err != nil {
      return "", "", err
    }
    return username, password, nil
  }, func() {
    t.println("Invalid username or password. Please try again.")
  })
  if err != nil {
    return nil, err
  }
  t.println("Login successful!")
  return sess, nil
}

// Run executes commands for one session. It returns true when the user
// wants to exit the program, false when the session ended but the
// program should loop back to login (logout, or a self-invalidating
// mutation).
func (t *Terminal) Run(sess *auth.Session) (bool, error) {
  t.separator()
  t.printf("Welcome, %s!\n", sess.User.Username)
  if sess.User.IsAdmin {
    t.println("You have ADMIN privileges.")
  }
  t.println("Type 'help' for available commands, 'exit' to quit.")

  for {
    line, err := t.promptLine(sess.User.Username + "> ")
    if err != nil {
      // Input is gone; treat it like exit.
      return true, nil
    }
    cmd := strings.ToLower(line)
    if cmd == "" {
      continue
    }
    t.separator()

    switch cmd {
    case "addusr":
      if sess.User.IsAdmin {
        if err := t.addUser(); err != nil {
          t.printf("Error adding user: %v\n", err)
        }
      } else {
        t.println("Error: You must be an admin to add users.")
      }

    case "listusr":
      if err := t.listUsers(); err != nil {
        t.printf("Error listing users: %v\n", err)
      }

    case "chusr":
      invalidated, err := t.changeUser(sess)
      if err != nil {
        t.printf("Error changing user: %v\n", err)
      }
      if invalidated {
        t.println("Your account has been modified. Please log in again.")
        sess.End()
        return false, nil
      }

    case "delusr":
      if sess.User.IsAdmin {
        selfDeleted, err := t.deleteUser(sess)
        if err != nil {
          t.printf("Error deleting user: %v\n", err)
        }
        if selfDeleted {
          t.println("Your account has been deleted. Logging out.")
          sess.End()
          return false, nil
        }
      } else {
        t.println("Error: You must be logged in as an admin to delete users.")
      }

    case "help":
      t.printHelp()

    case "logout":
      t.println("Logging out. Please log in again.")
      sess.End()
      return false, nil

    case "exit":
      t.println("Logging out. Goodbye!")
      sess.End()
      return true, nil

    default:
      t.printf("Unknown command: '%s'. Type 'help' for a list of commands.\n", cmd)
    }
    t.separator()
  }
}

func (t *Terminal) printHelp() {
  t.println("Available commands:")
  t.println("  addusr    - Add a new user (admin only)")
  t.println("  listusr   - List all users")
  t.println("  chusr     - Change user passwords and admin status (users can change their own password)")
  t.println("  delusr    - Delete a user (admin only)")
  t.println("  logout    - Log out and login as another user")
  t.println("  exit      - Log out and exit the program")
  t.println("  help      - Show this help message")
}
