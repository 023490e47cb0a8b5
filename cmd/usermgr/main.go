// Command usermgr is an interactive account manager over a local
// credential store. It walks first-time users through creating the
// root admin account, then loops login sessions until the user exits.
package main

import (
  "database/sql"
  "errors"
  "flag"
  "fmt"
  "os"

  "github.com/golang/glog"
  _ "github.com/mattn/go-sqlite3"

  "github.com/minikern/usermgr/account"
  "github.com/minikern/usermgr/auth"
  "github.com/minikern/usermgr/store"
  "github.com/minikern/usermgr/terminal"
  "github.com/minikern/usermgr/users"
)

func main() {
  os.Exit(doMain())
}

// doMain returns 0 if the program is exiting with no errors.
func doMain() int {
  fileP := flag.String("file", store.DefaultPath, "path to the account store file")
  dbP := flag.String("db", "", "keep accounts in a sqlite database at this path instead of a file")
  flag.Parse()

  st, cleanup, err := openStore(*fileP, *dbP)
  if err != nil {
    fmt.Printf("Error opening account store: %v\n", err)
    return 1
  }
  defer cleanup()

  accounts := account.NewService(st)
  term := terminal.New(st, accounts)

  uu, err := st.Load()
  if err != nil {
    if !errors.Is(err, store.ErrCorrupt) {
      fmt.Printf("Error loading account store: %v\n", err)
      return 1
    }
    // A broken store is recovered by discarding it and running
    // initial setup again.
    glog.Warningf("discarding corrupt account store: %v", err)
    fmt.Println("Warning: the account store could not be read and will be re-initialized.")
    if err := st.Discard(); err != nil {
      fmt.Printf("Error discarding corrupt account store: %v\n", err)
      return 1
    }
    uu = users.Empty()
  }

  fmt.Println("Account Manager")
  fmt.Println("-----------------------------")
  if uu.Count() == 0 {
    if _, err := term.InitialSetup(); err != nil {
      fmt.Printf("Error creating first account: %v\n", err)
      return 1
    }
  }

  for {
    // Always reload so login sees fresh records.
    uu, err := st.Load()
    if err != nil {
      fmt.Printf("Error loading account store: %v\n", err)
      return 1
    }
    if uu.Count() == 0 {
      // Cannot happen once initial setup has succeeded.
      fmt.Println("No accounts found in system.")
      return 1
    }
    sess, err := term.Login(uu)
    if err != nil {
      if errors.Is(err, auth.ErrTooManyAttempts) {
        fmt.Println("Too many failed login attempts.")
      } else {
        fmt.Printf("Error logging in: %v\n", err)
      }
      return 1
    }
    glog.V(1).Infof("session %s started for %q", sess.ID, sess.User.Username)
    exit, err := term.Run(sess)
    if err != nil {
      fmt.Printf("Error running session: %v\n", err)
      return 1
    }
    if exit {
      return 0
    }
  }
}

// openStore picks the backend: the passwd-style file by default, or
// sqlite when -db is given.
func openStore(file, dbPath string) (store.Store, func(), error) {
  if dbPath == "" {
    return store.NewFile(file), func() {}, nil
  }
  db, err := sql.Open("sqlite3", dbPath)
  if err != nil {
    return nil, nil, err
  }
  pdb := store.NewDB(db)
  if err := pdb.CreateAccountTable(); err != nil {
    db.Close()
    return nil, nil, err
  }
  return pdb, func() { db.Close() }, nil
}
