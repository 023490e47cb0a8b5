package store

import (
  "bufio"
  "encoding/csv"
  "fmt"
  "os"
  "strings"

  "github.com/golang/glog"

  "github.com/minikern/usermgr/users"
)

// DefaultPath is the well-known location of the account store file.
const DefaultPath = "users.pw"

// File implements the Store interface to load and save records in a
// file similar to a Unix /etc/passwd file.
// Each line has data for one account in colon-separated fields with
// the format
//   username:passwordhash:adminflag
// where adminflag is "yes" for an admin account and "no" otherwise.
// On load, only a case-insensitive match to "yes" counts as true; any
// other value, or a missing field, counts as false.
// Line order is the sequence order: the account on the first line is
// the root account.
type File struct {
  Filename string
}

func NewFile(filename string) *File {
  return &File{
    Filename: filename,
  }
}

func (pf *File) Load() (*users.Users, error) {
  f, err := os.Open(pf.Filename)
  if os.IsNotExist(err) {
    // No file yet means the store is uninitialized, not broken.
    return users.Empty(), nil
  }
  if err != nil {
    return nil, fmt.Errorf("error opening account file %s: %v", pf.Filename, err)
  }
  defer f.Close()

  r := csv.NewReader(bufio.NewReader(f))
  r.Comma = ':'
  r.FieldsPerRecord = -1        // We drop short lines ourselves.
  lines, err := r.ReadAll()
  if err != nil {
    return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, pf.Filename, err)
  }

  return pf.linesToUsers(lines), nil
}

// linesToUsers converts parsed lines to records. A line that does not
// carry all of username, hash, and admin flag is discarded rather than
// treated as fatal.
func (pf *File) linesToUsers(lines [][]string) *users.Users {
  uu := users.Empty()
  for _, line := range lines {
    if len(line) < 3 || line[0] == "" || line[1] == "" {
      glog.V(1).Infof("dropping malformed line in %s (%d fields)", pf.Filename, len(line))
      continue
    }
    uu.Append(users.User{
      Username: line[0],
      PasswordHash: line[1],
      IsAdmin: strings.EqualFold(line[2], "yes"),
    })
  }
  return uu
}

func adminToken(isAdmin bool) string {
  if isAdmin {
    return "yes"
  }
  return "no"
}

// Save writes the full sequence to a fresh file next to the active one,
// moves the old file to a backup path, and renames the new file into
// place. A failure at any step leaves the previously active content
// reachable, so a failed save commits nothing.
func (pf *File) Save(uu *users.Users) error {
  newFilePath := pf.Filename + ".new"
  f, err := os.Create(newFilePath)
  if err != nil {
    return fmt.Errorf("error creating new account file %s: %v", newFilePath, err)
  }
  w := csv.NewWriter(f)
  w.Comma = ':'
  for _, u := range uu.Records() {
    if err := w.Write([]string{u.Username, u.PasswordHash, adminToken(u.IsAdmin)}); err != nil {
      f.Close()
      return fmt.Errorf("error writing new account file %s: %v", newFilePath, err)
    }
  }
  w.Flush()
  if err := w.Error(); err != nil {
    f.Close()
    return fmt.Errorf("error writing new account file %s: %v", newFilePath, err)
  }
  if err := f.Close(); err != nil {
    return fmt.Errorf("error closing new account file %s: %v", newFilePath, err)
  }

  backupFilePath := pf.Filename + "~"
  err = os.Rename(pf.Filename, backupFilePath)
  if err != nil && !os.IsNotExist(err) {
    // The first save has no old file to back up.
    return fmt.Errorf("error moving old file to backup path %s: %v", backupFilePath, err)
  }
  err = os.Rename(newFilePath, pf.Filename)
  if err != nil {
    return fmt.Errorf("error moving new file %s to become active file: %v", newFilePath, err)
  }

  return nil
}

// Discard removes the persisted file so that initial setup can run
// again after corruption. A missing file is not an error.
func (pf *File) Discard() error {
  err := os.Remove(pf.Filename)
  if err != nil && !os.IsNotExist(err) {
    return fmt.Errorf("error removing account file %s: %v", pf.Filename, err)
  }
  return nil
}
