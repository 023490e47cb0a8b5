package terminal

import (
  "fmt"
  "strings"
  "syscall"

  "golang.org/x/crypto/ssh/terminal"
)

func (t *Terminal) printf(format string, args ...interface{}) {
  fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) println(args ...interface{}) {
  fmt.Fprintln(t.out, args...)
}

func (t *Terminal) separator() {
  t.println("-----------------------------")
}

// promptLine prints a prompt and reads one line of input, trimmed.
func (t *Terminal) promptLine(prompt string) (string, error) {
  fmt.Fprint(t.out, prompt)
  line, err := t.in.ReadString('\n')
  if err != nil && line == "" {
    return "", err
  }
  return strings.TrimSpace(line), nil
}

// readPasswordTerminal reads a password from the controlling terminal
// without echoing it. When stdin is not a terminal (input piped in),
// it falls back to plain line reading.
func (t *Terminal) readPasswordTerminal() (string, error) {
  if !terminal.IsTerminal(syscall.Stdin) {
    line, err := t.in.ReadString('\n')
    if err != nil && line == "" {
      return "", err
    }
    return strings.TrimRight(line, "\r\n"), nil
  }
  pw, err := terminal.ReadPassword(syscall.Stdin)
  if err != nil {
    return "", err
  }
  return string(pw), nil
}

// promptPassword prints a prompt and reads a password with echo off.
func (t *Terminal) promptPassword(prompt string) (string, error) {
  fmt.Fprint(t.out, prompt)
  pw, err := t.readPassword()
  fmt.Fprintln(t.out)
  if err != nil {
    return "", err
  }
  return pw, nil
}

// confirmedPassword asks for a new password twice and keeps asking
// until the two entries match and are non-empty.
func (t *Terminal) confirmedPassword(prompt string) (string, error) {
  for {
    pass1, err := t.promptPassword(prompt + ": > ")
    if err != nil {
      return "", err
    }
    pass2, err := t.promptPassword("Confirm Password: > ")
    if err != nil {
      return "", err
    }
    if pass1 != pass2 {
      t.println("Passwords do not match. Please try again.")
      continue
    }
    if pass1 == "" {
      t.println("Password cannot be empty. Please try again.")
      continue
    }
    return pass1, nil
  }
}

// promptAffirm asks a y/n question; anything other than an explicit
// yes counts as no.
func (t *Terminal) promptAffirm(prompt string) (bool, error) {
  line, err := t.promptLine(prompt + " (y/n): > ")
  if err != nil {
    return false, err
  }
  return strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"), nil
}

// promptYesNo asks a y/n question and re-asks until the answer is an
// explicit yes or no.
func (t *Terminal) promptYesNo(prompt string) (bool, error) {
  for {
    line, err := t.promptLine(prompt + " (y/n): > ")
    if err != nil {
      return false, err
    }
    switch strings.ToLower(line) {
    case "y", "yes":
      return true, nil
    case "n", "no":
      return false, nil
    }
    t.println("Invalid input. Please enter 'y' or 'n'.")
  }
}
