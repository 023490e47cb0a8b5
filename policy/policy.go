// The policy package decides which account mutations an actor may
// perform on a target account. It is pure decision logic: Evaluate
// never touches storage and never mutates anything, it only classifies
// a requested mutation as allowed, denied, or in need of an explicit
// confirmation from the actor.
package policy

import (
  "github.com/minikern/usermgr/users"
)

// Mutation identifies one of the account mutations the policy mediates.
type Mutation int

const (
  ChangePassword Mutation = iota
  GrantAdmin
  RevokeAdmin
  Delete
)

func (m Mutation) String() string {
  switch m {
  case ChangePassword:
    return "change password"
  case GrantAdmin:
    return "grant admin"
  case RevokeAdmin:
    return "revoke admin"
  case Delete:
    return "delete"
  }
  return "unknown"
}

// Verdict is the classification of a requested mutation.
type Verdict int

const (
  Allowed Verdict = iota
  Denied
  RequiresConfirmation
)

// Denial reasons, one distinct string per rule, so callers and tests
// can tell refusals apart by cause.
const (
  ReasonAdminRequired = "admin privileges required"
  ReasonRootImmutable = "root admin status is immutable"
  ReasonRootPassword  = "only root may change root's password"
  ReasonLastAdmin     = "cannot remove the last admin"
  ReasonRootDelete    = "cannot delete the root account"
  ReasonLastAccount   = "cannot delete the only remaining account"
  ReasonBadProof      = "incorrect verification password"
)

// An Outcome is the policy's answer for one request. Reason is set
// only when the Verdict is Denied.
type Outcome struct {
  Verdict Verdict
  Reason string
}

func allowed() Outcome {
  return Outcome{Verdict: Allowed}
}

func denied(reason string) Outcome {
  return Outcome{Verdict: Denied, Reason: reason}
}

// A Request names the actor, the target, and the mutation to classify.
// TargetIndex must be a valid position in Users; the caller resolves
// the target username to its index before asking.
//
// RootProofHash is consulted only for Delete: it is the digest of the
// password the actor supplied as proof of authority, to be matched
// against the root account's stored digest. A wrong proof is a policy
// denial, not a login failure, so it never counts against the login
// attempt budget.
type Request struct {
  Actor users.CurrentUser
  Users *users.Users
  TargetIndex int
  Mutation Mutation
  RootProofHash string
}

// Evaluate classifies one requested mutation. It is total: every
// request maps to exactly one outcome.
//
// The rules, in precedence order:
//  1. Any actor may change their own password.
//  2. Non-admin actors may do nothing else, on any target.
//  3. The root account (position 0) never changes admin status, and
//     only root may change root's password.
//  4. Revoking admin must leave at least one other admin; revoking
//     your own admin additionally requires confirmation.
//  5. An admin may always grant admin to a non-root target.
//  6. Deletion never applies to root or to the only remaining account,
//     and requires the root password as proof of authority.
func Evaluate(req Request) Outcome {
  target := req.Users.At(req.TargetIndex)
  isSelf := req.Actor.Username == target.Username
  isRootTarget := req.TargetIndex == 0

  if req.Mutation == ChangePassword && isSelf {
    return allowed()
  }
  if !req.Actor.IsAdmin {
    return denied(ReasonAdminRequired)
  }

  switch req.Mutation {
  case ChangePassword:
    // Not a self-change; actor is an admin.
    if isRootTarget {
      // Root's own change was already allowed above, so the actor
      // here is someone else.
      return denied(ReasonRootPassword)
    }
    return allowed()

  case GrantAdmin:
    if isRootTarget {
      return denied(ReasonRootImmutable)
    }
    return allowed()

  case RevokeAdmin:
    if isRootTarget {
      return denied(ReasonRootImmutable)
    }
    if req.Users.AdminCountExcluding(target.Username) == 0 {
      return denied(ReasonLastAdmin)
    }
    if isSelf {
      // Dropping your own privileges wants a second acknowledgment.
      // Declining is a no-change, not a denial.
      return Outcome{Verdict: RequiresConfirmation}
    }
    return allowed()

  case Delete:
    if req.Users.Count() <= 1 {
      return denied(ReasonLastAccount)
    }
    if isRootTarget {
      return denied(ReasonRootDelete)
    }
    if req.RootProofHash != req.Users.Root().PasswordHash {
      return denied(ReasonBadProof)
    }
    return allowed()
  }

  return denied(ReasonAdminRequired)
}
