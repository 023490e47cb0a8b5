package terminal

import (
  "errors"

  "github.com/minikern/usermgr/account"
  "github.com/minikern/usermgr/auth"
  "github.com/minikern/usermgr/policy"
  "github.com/minikern/usermgr/users"
)

// addUser runs the add-account dialog. The caller has already checked
// that the actor is an admin; creation itself carries no further
// policy beyond username validation.
func (t *Terminal) addUser() error {
  t.println("Create a new user")
  t.separator()

  var username string
  for {
    name, err := t.promptLine("Username: > ")
    if err != nil {
      return err
    }
    // Fresh records every attempt, so the uniqueness check sees
    // accounts added since this command started.
    uu, err := t.st.Load()
    if err != nil {
      return err
    }
    if verr := account.ValidateUsername(uu, name); verr != nil {
      var ve *account.ValidationError
      if errors.As(verr, &ve) && ve.Reason == "username already exists" {
        t.printf("User '%s' already exists. Try a different username.\n", name)
      } else {
        t.explainUsername(name)
      }
      continue
    }
    username = name
    break
  }

  password, err := t.confirmedPassword("Password")
  if err != nil {
    return err
  }
  isAdmin, err := t.promptYesNo("Grant admin privileges?")
  if err != nil {
    return err
  }

  uu, err := t.st.Load()
  if err != nil {
    return err
  }
  if _, err := t.accounts.Create(uu, username, password, isAdmin); err != nil {
    return err
  }
  suffix := ""
  if isAdmin {
    suffix = " with admin privileges"
  }
  t.printf("User '%s' created%s.\n", username, suffix)
  return nil
}

// listUsers prints the account list in sequence order, marking admins.
func (t *Terminal) listUsers() error {
  uu, err := t.st.Load()
  if err != nil {
    return err
  }
  if uu.Count() == 0 {
    t.println("No users found.")
    return nil
  }
  t.println("User List")
  for i := 0; i < uu.Count(); i++ {
    prefix := "├──"
    if i == uu.Count()-1 {
      prefix = "└──"
    }
    role := "User"
    if uu.At(i).IsAdmin {
      role = "Admin"
    }
    t.printf("%s %s (%s)\n", prefix, uu.At(i).Username, role)
  }
  return nil
}

// changeUser runs the modify-account dialog. The returned bool reports
// whether the session's own account was modified, which forces a
// re-login.
func (t *Terminal) changeUser(sess *auth.Session) (bool, error) {
  t.println("Modify User")
  t.separator()
  if err := t.listUsers(); err != nil {
    return false, err
  }

  name, err := t.promptLine("Enter Username: > ")
  if err != nil {
    return false, err
  }
  if name == "" {
    t.println("Username cannot be empty.")
    return false, nil
  }

  uu, err := t.st.Load()
  if err != nil {
    return false, err
  }
  idx := uu.Index(name)
  if idx < 0 {
    t.printf("User '%s' not found.\n", name)
    return false, nil
  }
  actor := sess.User

  if !actor.IsAdmin {
    out := t.accounts.Request(actor, uu, idx, policy.ChangePassword, "")
    if out.Verdict == policy.Denied {
      t.println("Error: Non-admin users can only change their own password.")
      return false, nil
    }
    t.println("Change your password:")
    password, err := t.confirmedPassword("Enter New Password")
    if err != nil {
      return false, err
    }
    rep, err := t.accounts.SetPassword(actor, uu, idx, password)
    if err != nil {
      return false, err
    }
    t.println("Your password has been updated successfully.")
    return rep.AffectsSession, nil
  }

  target := uu.At(idx)
  privileges := "standard"
  if target.IsAdmin {
    privileges = "ADMIN"
  }
  t.printf("User '%s' currently has %s privileges.\n", name, privileges)

  if idx == 0 {
    return t.changeRoot(sess, uu)
  }

  affects := false
  changed := false

  flip, err := t.promptAffirm("Change admin privileges?")
  if err != nil {
    return affects, err
  }
  if flip {
    grant := !target.IsAdmin
    m := policy.RevokeAdmin
    if grant {
      m = policy.GrantAdmin
    }
    out := t.accounts.Request(actor, uu, idx, m, "")
    apply := false
    switch out.Verdict {
    case policy.Denied:
      t.printf("Error: %s.\n", capitalize(out.Reason))
      if out.Reason == policy.ReasonLastAdmin {
        t.println("Create another admin user first.")
      }
    case policy.RequiresConfirmation:
      t.println("Warning: You are removing your own admin privileges.")
      confirmed, err := t.promptAffirm("Are you sure?")
      if err != nil {
        return affects, err
      }
      if confirmed {
        apply = true
      } else {
        // Declining is a no-change, not a refusal.
        t.println("Admin privilege change cancelled.")
      }
    case policy.Allowed:
      apply = true
    }
    if apply {
      rep, err := t.accounts.SetAdmin(actor, uu, idx, grant)
      if err != nil {
        return affects, err
      }
      changed = true
      affects = affects || rep.AffectsSession
      if grant {
        t.printf("User '%s' has been granted admin privileges.\n", name)
      } else {
        t.printf("User '%s' admin privileges have been removed.\n", name)
      }
    }
  }

  chpw, err := t.promptAffirm("Change password?")
  if err != nil {
    return affects, err
  }
  if chpw {
    password, err := t.confirmedPassword("Enter New Password")
    if err != nil {
      return affects, err
    }
    rep, err := t.accounts.SetPassword(actor, uu, idx, password)
    if err != nil {
      return affects, err
    }
    changed = true
    affects = affects || rep.AffectsSession
    t.printf("Password for '%s' updated successfully.\n", name)
  }

  if !changed {
    t.printf("No changes were made to user '%s'.\n", name)
  }
  return affects, nil
}

// changeRoot handles chusr when the target is the root account: admin
// status is untouchable and only root may change the password.
func (t *Terminal) changeRoot(sess *auth.Session, uu *users.Users) (bool, error) {
  t.println("Note: This is the root user. Admin status cannot be changed.")

  out := t.accounts.Request(sess.User, uu, 0, policy.ChangePassword, "")
  if out.Verdict == policy.Denied {
    t.println("Error: Only the root user can change root's password.")
    return false, nil
  }

  change, err := t.promptAffirm("Change root password?")
  if err != nil {
    return false, err
  }
  if !change {
    return false, nil
  }
  password, err := t.confirmedPassword("Enter New Password")
  if err != nil {
    return false, err
  }
  rep, err := t.accounts.SetPassword(sess.User, uu, 0, password)
  if err != nil {
    return false, err
  }
  t.println("Root password updated successfully.")
  return rep.AffectsSession, nil
}

// deleteUser runs the delete-account dialog. The returned bool reports
// whether the session's own account was the one deleted.
func (t *Terminal) deleteUser(sess *auth.Session) (bool, error) {
  t.println("Delete User")
  t.separator()
  if err := t.listUsers(); err != nil {
    return false, err
  }

  uu, err := t.st.Load()
  if err != nil {
    return false, err
  }
  // Refuse before even asking for a target: the store must never drop
  // to zero accounts.
  if uu.Count() <= 1 {
    t.println("Cannot delete users when there's only one user in the system.")
    return false, nil
  }

  name, err := t.promptLine("Enter username to delete: > ")
  if err != nil {
    return false, err
  }
  if name == "" {
    t.println("Username cannot be empty.")
    return false, nil
  }
  idx := uu.Index(name)
  if idx < 0 {
    t.printf("User '%s' not found.\n", name)
    return false, nil
  }
  if idx == 0 {
    t.println("Error: Cannot delete the first user (root admin).")
    return false, nil
  }

  // Deletion needs proof of authority: the root account's password,
  // independent of the actor's own session.
  proof, err := t.promptPassword("Enter password of " + uu.Root().Username + " (for verification): > ")
  if err != nil {
    return false, err
  }
  rep, err := t.accounts.Delete(sess.User, uu, idx, proof)
  if err != nil {
    var aerr *account.AccessError
    if errors.As(err, &aerr) {
      t.println("Incorrect password. User deletion cancelled.")
      return false, nil
    }
    return false, err
  }
  t.printf("User '%s' has been deleted.\n", name)
  return rep.AffectsSession, nil
}

func capitalize(s string) string {
  if s == "" {
    return s
  }
  b := []byte(s)
  if b[0] >= 'a' && b[0] <= 'z' {
    b[0] -= 'a' - 'A'
  }
  return string(b)
}
