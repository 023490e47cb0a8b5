package store

import (
  "database/sql"
  "fmt"
  "strings"

  "github.com/golang/glog"

  "github.com/minikern/usermgr/users"
)

// DB implements the Store interface to load and save records in an SQL
// database. Data is stored in a table called "account" with an integer
// position column and three string columns: username, passwordhash, and
// isadmin. The position column carries the sequence order, so the row
// with position 0 is the root account. The isadmin column holds the
// same "yes"/"no" token as the file store.
type DB struct {
  db *sql.DB
}

func NewDB(db *sql.DB) *DB {
  return &DB{
    db: db,
  }
}

func (pdb *DB) CreateAccountTable() error {
  query := `CREATE TABLE IF NOT EXISTS account(
      position integer primary key,
      username text not null unique,
      passwordhash text not null,
      isadmin text not null);`
  _, err := pdb.db.Exec(query)
  return err
}

func (pdb *DB) Load() (*users.Users, error) {
  query := "SELECT username, passwordhash, isadmin FROM account ORDER BY position;"
  rows, err := pdb.db.Query(query)
  if err != nil {
    return nil, fmt.Errorf("error loading accounts from database: %v", err)
  }
  defer rows.Close()

  uu := users.Empty()
  for rows.Next() {
    var username, passwordhash, isadmin string
    if err := rows.Scan(&username, &passwordhash, &isadmin); err != nil {
      return nil, fmt.Errorf("error scanning account row: %v", err)
    }
    uu.Append(users.User{
      Username: username,
      PasswordHash: passwordhash,
      IsAdmin: strings.EqualFold(isadmin, "yes"),
    })
  }
  if err := rows.Err(); err != nil {
    return nil, fmt.Errorf("error reading account rows: %v", err)
  }
  glog.V(2).Infof("loaded %d accounts from database", uu.Count())
  return uu, nil
}

// Save rewrites the whole table inside one transaction, so a failed
// save leaves the previous rows in place.
func (pdb *DB) Save(uu *users.Users) error {
  tx, err := pdb.db.Begin()
  if err != nil {
    return fmt.Errorf("error starting save transaction: %v", err)
  }
  if _, err := tx.Exec("DELETE FROM account;"); err != nil {
    tx.Rollback()
    return fmt.Errorf("error clearing account table: %v", err)
  }
  iQuery := "INSERT INTO account(position, username, passwordhash, isadmin) values(:pos, :name, :hash, :adm);"
  for i, u := range uu.Records() {
    _, err := tx.Exec(iQuery,
        sql.Named("pos", i),
        sql.Named("name", u.Username),
        sql.Named("hash", u.PasswordHash),
        sql.Named("adm", adminToken(u.IsAdmin)))
    if err != nil {
      tx.Rollback()
      return fmt.Errorf("error saving account %q: %v", u.Username, err)
    }
  }
  if err := tx.Commit(); err != nil {
    return fmt.Errorf("error committing account save: %v", err)
  }
  return nil
}

// Discard empties the account table, returning the store to its
// uninitialized state.
func (pdb *DB) Discard() error {
  _, err := pdb.db.Exec("DELETE FROM account;")
  if err != nil {
    return fmt.Errorf("error discarding account table: %v", err)
  }
  return nil
}
