// The account package applies approved mutations to the record set and
// persists them. It owns account creation (validation, hashing, the
// forced-admin first record) and surfaces, through Report, which
// changes invalidate the acting session so the surrounding layer can
// force a fresh login.
package account

import (
  "fmt"
  "strings"
  "unicode"

  "github.com/golang/glog"

  "github.com/minikern/usermgr/auth"
  "github.com/minikern/usermgr/policy"
  "github.com/minikern/usermgr/store"
  "github.com/minikern/usermgr/users"
)

// Characters a username may not contain, besides whitespace. These are
// markup-special characters; keeping them out of usernames keeps the
// records expressible in any serialized form.
const usernameSpecials = `<>&"'`

// A ValidationError reports a username that cannot be used for a new
// account. The surrounding layer recovers by re-prompting.
type ValidationError struct {
  Username string
  Reason string
}

func (e *ValidationError) Error() string {
  return fmt.Sprintf("invalid username %q: %s", e.Username, e.Reason)
}

// An AccessError is a policy refusal surfaced through the mutation
// layer. It carries the policy's reason string.
type AccessError struct {
  Reason string
}

func (e *AccessError) Error() string {
  return e.Reason
}

// A Report says what a committed mutation changed. AffectsSession is
// set when the change invalidates the acting user's own login (their
// password or admin flag changed, or their account was deleted), so
// the interactive layer knows to force a re-login.
type Report struct {
  Target string
  PasswordChanged bool
  AdminChanged bool
  Deleted bool
  AffectsSession bool
}

// Service applies mutations and persists the result through a Store.
type Service struct {
  store store.Store
}

func NewService(st store.Store) *Service {
  return &Service{
    store: st,
  }
}

// ValidateUsername checks that name is usable for a new account in uu:
// non-empty, free of whitespace and markup-special characters, and not
// already taken (case-sensitive).
func ValidateUsername(uu *users.Users, name string) error {
  if name == "" {
    return &ValidationError{Username: name, Reason: "username cannot be empty"}
  }
  if strings.ContainsAny(name, usernameSpecials) || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
    return &ValidationError{Username: name, Reason: "username cannot contain spaces or special characters"}
  }
  if uu.Contains(name) {
    return &ValidationError{Username: name, Reason: "username already exists"}
  }
  return nil
}

// Request classifies a mutation without applying it. This is the
// boundary the interactive layer calls before deciding whether to
// prompt for confirmation or report a refusal.
func (s *Service) Request(actor users.CurrentUser, uu *users.Users, targetIndex int, m policy.Mutation, rootProofHash string) policy.Outcome {
  return policy.Evaluate(policy.Request{
    Actor: actor,
    Users: uu,
    TargetIndex: targetIndex,
    Mutation: m,
    RootProofHash: rootProofHash,
  })
}

// check re-evaluates the policy at apply time. RequiresConfirmation is
// treated as approved here: apply is only called after the surrounding
// layer has collected the confirmation, and declining never reaches
// this point.
func (s *Service) check(actor users.CurrentUser, uu *users.Users, targetIndex int, m policy.Mutation, rootProofHash string) error {
  out := s.Request(actor, uu, targetIndex, m, rootProofHash)
  if out.Verdict == policy.Denied {
    return &AccessError{Reason: out.Reason}
  }
  return nil
}

// Create validates, hashes, appends, and saves a new account record.
// The first record ever created is forced admin and becomes the root
// account at position 0.
func (s *Service) Create(uu *users.Users, username, password string, isAdmin bool) (*users.User, error) {
  if err := ValidateUsername(uu, username); err != nil {
    return nil, err
  }
  if uu.Count() == 0 {
    isAdmin = true
  }
  uu.Append(users.User{
    Username: username,
    PasswordHash: auth.HashPassword(password),
    IsAdmin: isAdmin,
  })
  if err := s.store.Save(uu); err != nil {
    return nil, err
  }
  glog.V(1).Infof("created account %q (admin=%v)", username, isAdmin)
  return uu.At(uu.Count() - 1), nil
}

// InitialSetup creates the very first account when the store is empty.
// The record is always admin: it is the root account.
func (s *Service) InitialSetup(username, password string) (*users.User, error) {
  return s.Create(users.Empty(), username, password, true)
}

// SetPassword applies an approved password change and saves. If the
// save fails the mutation is not committed; the caller must reload
// before the next operation.
func (s *Service) SetPassword(actor users.CurrentUser, uu *users.Users, targetIndex int, newPassword string) (*Report, error) {
  if err := s.check(actor, uu, targetIndex, policy.ChangePassword, ""); err != nil {
    return nil, err
  }
  target := uu.At(targetIndex)
  target.PasswordHash = auth.HashPassword(newPassword)
  if err := s.store.Save(uu); err != nil {
    return nil, err
  }
  glog.V(1).Infof("password changed for %q by %q", target.Username, actor.Username)
  return &Report{
    Target: target.Username,
    PasswordChanged: true,
    AffectsSession: actor.Username == target.Username,
  }, nil
}

// SetAdmin applies an approved admin-flag change and saves.
func (s *Service) SetAdmin(actor users.CurrentUser, uu *users.Users, targetIndex int, isAdmin bool) (*Report, error) {
  m := policy.GrantAdmin
  if !isAdmin {
    m = policy.RevokeAdmin
  }
  if err := s.check(actor, uu, targetIndex, m, ""); err != nil {
    return nil, err
  }
  target := uu.At(targetIndex)
  target.IsAdmin = isAdmin
  if err := s.store.Save(uu); err != nil {
    return nil, err
  }
  glog.V(1).Infof("admin flag for %q set to %v by %q", target.Username, isAdmin, actor.Username)
  return &Report{
    Target: target.Username,
    AdminChanged: true,
    AffectsSession: actor.Username == target.Username,
  }, nil
}

// Delete removes the target record after checking the policy,
// including the root-password proof, then saves. The relative order of
// the remaining records is preserved.
func (s *Service) Delete(actor users.CurrentUser, uu *users.Users, targetIndex int, rootProof string) (*Report, error) {
  if err := s.check(actor, uu, targetIndex, policy.Delete, auth.HashPassword(rootProof)); err != nil {
    return nil, err
  }
  name := uu.At(targetIndex).Username
  uu.Remove(targetIndex)
  if err := s.store.Save(uu); err != nil {
    return nil, err
  }
  glog.V(1).Infof("account %q deleted by %q", name, actor.Username)
  return &Report{
    Target: name,
    Deleted: true,
    AffectsSession: actor.Username == name,
  }, nil
}
