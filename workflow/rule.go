package workflow

import (
	"strings"
)

type Effect int

const (
	Allow Effect = iota + 1
	Deny
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	}
	return "unknown"
}

func (e Effect) Valid() bool {
	return e == Allow || e == Deny
}

// Well-known principals.
const (
	Everyone      = "system.Everyone"
	Authenticated = "system.Authenticated"
)

// Actions is an ordered set of action names. The zero value is empty.
type Actions struct {
	names []string
	all   bool
}

// AllActions contains every action.
var AllActions = Actions{all: true}

// NewActions returns a set of the given names. Duplicates and empty names are dropped.
func NewActions(names ...string) Actions {
	var a = Actions{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || a.Contains(name) {
			continue
		}
		a.names = append(a.names, name)
	}
	return a
}

func (a Actions) All() bool {
	return a.all
}

func (a Actions) Contains(action string) bool {
	if a.all {
		return true
	}
	for _, name := range a.names {
		if name == action {
			return true
		}
	}
	return false
}

func (a Actions) Empty() bool {
	return !a.all && len(a.names) == 0
}

// Names returns a copy of the action names. It returns nil for AllActions.
func (a Actions) Names() []string {
	if a.all || len(a.names) == 0 {
		return nil
	}
	return append([]string(nil), a.names...)
}

func (a Actions) String() string {
	if a.all {
		return "*"
	}
	return strings.Join(a.names, ",")
}

// An Object carries its workflow state in a string attribute. Unset attributes are "".
type Object interface {
	Attr(name string) string
	SetAttr(name, value string)
}

// A PrincipalFunc computes a principal from an object. If ok is false, the rule is omitted.
type PrincipalFunc func(obj Object) (principal string, ok bool)

// AttrPrincipal returns a PrincipalFunc which reads the given attribute and prepends prefix to it.
func AttrPrincipal(attr, prefix string) PrincipalFunc {
	return func(obj Object) (string, bool) {
		value := obj.Attr(attr)
		if value == "" {
			return "", false
		}
		return prefix + value, true
	}
}

// A Rule is an access control entry template. If Resolve is not nil, Principal is ignored.
type Rule struct {
	Effect    Effect
	Principal string
	Resolve   PrincipalFunc
	Actions   Actions
}

// DenyAll denies everything to everyone. It usually terminates a State.
var DenyAll = Rule{
	Effect:    Deny,
	Principal: Everyone,
	Actions:   AllActions,
}

func NewRule(effect Effect, principal string, actions Actions) Rule {
	return Rule{
		Effect:    effect,
		Principal: principal,
		Actions:   actions,
	}
}

func NewDynamicRule(effect Effect, resolve PrincipalFunc, actions Actions) Rule {
	return Rule{
		Effect:  effect,
		Resolve: resolve,
		Actions: actions,
	}
}

// principal returns the principal of the rule with respect to the given object.
func (r Rule) principal(obj Object) (string, bool) {
	if r.Resolve != nil {
		return r.Resolve(obj)
	}
	return r.Principal, r.Principal != ""
}

// ACE is a resolved access control entry.
type ACE struct {
	Effect    Effect
	Principal string
	Actions   Actions
}

func (ace ACE) String() string {
	return ace.Effect.String() + " " + ace.Principal + " " + ace.Actions.String()
}

// A State is an immutable ordered list of rules. Rules are applied in order, the first match wins.
type State struct {
	rules []Rule
}

func NewState(rules ...Rule) *State {
	return &State{
		rules: append([]Rule(nil), rules...),
	}
}

// Rules returns a copy of the rules of the state.
func (s *State) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

func (s *State) Len() int {
	return len(s.rules)
}
