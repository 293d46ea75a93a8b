package auth

import (
	"errors"
	"strconv"

	"github.com/wansing/blog/workflow"
)

// AdminGroup is the name of the group whose members manage everything.
const AdminGroup = "admin"

var (
	ErrAuth          = errors.New("authentication failed")
	ErrEmptyPassword = errors.New("refusing to set empty password")
)

type AuthDB struct {
	GroupDB
	UserDB
}

// SetPassword shadows AuthDB.UserDB.SetPassword.
func (a *AuthDB) SetPassword(u DBUser, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return a.UserDB.SetPassword(u, password)
}

func UserPrincipal(id int) string {
	return "user:" + strconv.Itoa(id)
}

func GroupPrincipal(name string) string {
	return "group:" + name
}

// Principals returns all principals which the user holds. If u is nil, only workflow.Everyone is returned.
func (a *AuthDB) Principals(u DBUser) ([]string, error) {

	var principals = []string{workflow.Everyone}
	if u == nil {
		return principals, nil
	}

	principals = append(principals, workflow.Authenticated, UserPrincipal(u.ID()))

	groups, err := a.GetGroupsOf(u)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		principals = append(principals, GroupPrincipal(group.Name()))
	}

	return principals, nil
}

// IsAdmin returns whether the user is a member of the AdminGroup.
func (a *AuthDB) IsAdmin(u DBUser) (bool, error) {
	if u == nil {
		return false, nil
	}
	group, err := a.GetGroupByName(AdminGroup)
	if err != nil {
		if a.GroupDB.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return a.HasMember(group, u)
}

// Permits evaluates an ACL. The first entry which matches one of the principals and the action decides.
func Permits(acl []workflow.ACE, principals []string, action string) bool {
	for _, ace := range acl {
		if !ace.Actions.Contains(action) {
			continue
		}
		for _, principal := range principals {
			if principal == ace.Principal {
				return ace.Effect == workflow.Allow
			}
		}
	}
	return false
}
