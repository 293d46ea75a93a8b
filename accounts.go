package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/core"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh/terminal"
)

var ErrPasswordMismatch = errors.New("passwords don't match")

// accountOpts are the flags of the init subcommand.
type accountOpts struct {
	insert    bool
	join      bool
	makeAdmin bool
	group     string
	user      string
}

func (a *accountOpts) register(fs *flag.FlagSet) {
	fs.BoolVar(&a.insert, "insert", false, "create the given group and/or user")
	fs.BoolVar(&a.join, "join", false, "add the given user to the given group")
	fs.BoolVar(&a.makeAdmin, "make-admin", false, "add the given user to the "+auth.AdminGroup+" group")
	fs.StringVar(&a.group, "group", "", "group `name`")
	fs.StringVar(&a.user, "user", "", "user `name`")
}

func (a *accountOpts) run(db *core.CoreDB) error {
	switch {
	case a.insert && (a.group != "" || a.user != ""):
		if a.group != "" {
			if _, err := db.Auth.InsertGroup(a.group); err != nil {
				return fmt.Errorf("creating group %s: %w", a.group, err)
			}
			db.Log.Info("group created", zap.String("group", a.group))
		}
		if a.user != "" {
			return createUser(db, a.user)
		}
		return nil
	case a.join && a.group != "" && a.user != "":
		return joinGroup(db, a.group, a.user)
	case a.makeAdmin && a.user != "":
		return joinGroup(db, auth.AdminGroup, a.user)
	default:
		return errors.New("nothing to do, see -help")
	}
}

// promptPassword reads a password twice from the terminal without echoing it.
func promptPassword() (string, error) {
	var fd = int(os.Stdin.Fd())
	var read = func(prompt string) ([]byte, error) {
		fmt.Print(prompt)
		defer fmt.Println()
		return terminal.ReadPassword(fd)
	}
	first, err := read("password: ")
	if err != nil {
		return "", err
	}
	second, err := read("repeat password: ")
	if err != nil {
		return "", err
	}
	if !bytes.Equal(first, second) {
		return "", ErrPasswordMismatch
	}
	return string(first), nil
}

func createUser(db *core.CoreDB, name string) error {

	fmt.Printf("creating user %s\n", name)
	password, err := promptPassword()
	if err != nil {
		return err
	}

	u, err := db.Auth.InsertUser(name)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", name, err)
	}

	if err := db.Auth.SetPassword(u, password); err != nil {
		return err
	}

	db.Log.Info("user created", zap.String("user", u.Name()), zap.Int("id", u.ID()))
	return nil
}

// joinGroup adds a user to a group. The group is created if it does not exist.
func joinGroup(db *core.CoreDB, groupName, userName string) error {

	u, err := db.Auth.GetUserByName(userName)
	if err != nil {
		return fmt.Errorf("getting user %s: %w", userName, err)
	}

	if err := db.Auth.JoinByName(groupName, u); err != nil {
		return err
	}

	db.Log.Info("user joined group", zap.String("user", u.Name()), zap.String("group", groupName))
	return nil
}
