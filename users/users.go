package users

// Users is an ordered sequence of account records. The order is
// meaningful and persisted: the record at position 0 is the root
// account. Usernames are unique (case-sensitive) within the sequence.
type Users struct {
  records []User
}

func NewUsers(records []User) *Users {
  return &Users{
    records: records,
  }
}

func Empty() *Users {
  return NewUsers(nil)
}

func (m *Users) Count() int {
  return len(m.records)
}

// At returns a pointer to the record at position i, so that callers
// can mutate it in place before a save.
func (m *Users) At(i int) *User {
  return &m.records[i]
}

// Records returns the records in sequence order.
func (m *Users) Records() []User {
  return m.records
}

// Index returns the position of the named record, or -1 if there is
// no record with that username. The match is exact, case-sensitive.
func (m *Users) Index(username string) int {
  for i := range m.records {
    if m.records[i].Username == username {
      return i
    }
  }
  return -1
}

// User returns the named record, or nil if not present.
func (m *Users) User(username string) *User {
  i := m.Index(username)
  if i < 0 {
    return nil
  }
  return &m.records[i]
}

func (m *Users) Contains(username string) bool {
  return m.Index(username) >= 0
}

// Root returns the record at position 0, or nil when the store is empty.
func (m *Users) Root() *User {
  if len(m.records) == 0 {
    return nil
  }
  return &m.records[0]
}

// AdminCount returns the number of records with the admin flag set.
func (m *Users) AdminCount() int {
  n := 0
  for i := range m.records {
    if m.records[i].IsAdmin {
      n++
    }
  }
  return n
}

// AdminCountExcluding counts admins as AdminCount does, but skips the
// named record. This is what the last-admin check wants: how many
// admins would remain if the named record lost its flag.
func (m *Users) AdminCountExcluding(username string) int {
  n := 0
  for i := range m.records {
    if m.records[i].IsAdmin && m.records[i].Username != username {
      n++
    }
  }
  return n
}

// Append adds a record at the end of the sequence. The first record
// ever appended becomes the root account.
func (m *Users) Append(u User) {
  m.records = append(m.records, u)
}

// Remove deletes the record at position i, preserving the relative
// order of the remaining records.
func (m *Users) Remove(i int) {
  m.records = append(m.records[:i], m.records[i+1:]...)
}
