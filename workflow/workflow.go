package workflow

import (
	"go.uber.org/zap"
)

const DefaultStateAttr = "state"

// StateID is a handle which is assigned to a state on registration. It is the index of the state in Config.States.
type StateID int

type StateDef struct {
	Name  string
	State *State
}

type TransitionDef struct {
	Name string
	From string
	To   string
}

type Config struct {
	StateAttr    string // defaults to DefaultStateAttr
	States       []StateDef
	Transitions  []TransitionDef
	DefaultState string

	// Lenient makes objects with an unregistered state name fall back to the default state.
	// Otherwise ErrUnknownState is returned. Objects with an empty state are always in the default state.
	Lenient bool
	Logger  *zap.Logger // can be nil
}

// A Workflow is a registry of states and transitions for one content type.
// It is read-only after New and can be shared between goroutines.
type Workflow struct {
	stateAttr    string
	states       []*State           // StateID -> State
	names        []string           // StateID -> name
	ids          map[string]StateID // name -> StateID
	transitions  map[string]*Transition
	tnames       []string // declaration order
	defaultState StateID
	lenient      bool
	log          *zap.Logger
}

// New validates cfg and builds a Workflow. Any inconsistency yields a *ConfigurationError.
func New(cfg Config) (*Workflow, error) {

	var w = &Workflow{
		stateAttr:   cfg.StateAttr,
		ids:         make(map[string]StateID),
		transitions: make(map[string]*Transition),
		lenient:     cfg.Lenient,
		log:         cfg.Logger,
	}

	if w.stateAttr == "" {
		w.stateAttr = DefaultStateAttr
	}

	if w.log == nil {
		w.log = zap.NewNop()
	}

	// states

	if len(cfg.States) == 0 {
		return nil, configErrorf("no states")
	}

	var registered = make(map[*State]string) // only for detecting aliases

	for _, def := range cfg.States {
		if def.Name == "" {
			return nil, configErrorf("state without name")
		}
		if def.State == nil {
			return nil, configErrorf("state %s is nil", def.Name)
		}
		if _, ok := w.ids[def.Name]; ok {
			return nil, configErrorf("duplicate state name %s", def.Name)
		}
		if other, ok := registered[def.State]; ok {
			return nil, configErrorf("state %s is registered as %s too", def.Name, other)
		}
		for i, rule := range def.State.rules {
			if !rule.Effect.Valid() {
				return nil, configErrorf("rule %d of state %s has an invalid effect", i, def.Name)
			}
			if rule.Actions.Empty() {
				return nil, configErrorf("rule %d of state %s has no actions", i, def.Name)
			}
			if rule.Resolve == nil && rule.Principal == "" {
				return nil, configErrorf("rule %d of state %s has no principal", i, def.Name)
			}
		}
		registered[def.State] = def.Name
		w.ids[def.Name] = StateID(len(w.states))
		w.states = append(w.states, def.State)
		w.names = append(w.names, def.Name)
	}

	defaultState, ok := w.ids[cfg.DefaultState]
	if !ok {
		return nil, configErrorf("default state %q is not registered", cfg.DefaultState)
	}
	w.defaultState = defaultState

	// transitions

	for _, def := range cfg.Transitions {
		if def.Name == "" {
			return nil, configErrorf("transition without name")
		}
		if _, ok := w.transitions[def.Name]; ok {
			return nil, configErrorf("duplicate transition name %s", def.Name)
		}
		from, ok := w.ids[def.From]
		if !ok {
			return nil, configErrorf("transition %s: source state %q is not registered", def.Name, def.From)
		}
		to, ok := w.ids[def.To]
		if !ok {
			return nil, configErrorf("transition %s: target state %q is not registered", def.Name, def.To)
		}
		w.transitions[def.Name] = &Transition{
			owner: w,
			name:  def.Name,
			from:  from,
			to:    to,
		}
		w.tnames = append(w.tnames, def.Name)
	}

	return w, nil
}

// MustNew is like New but panics on error. It is meant for package-level workflow definitions.
func MustNew(cfg Config) *Workflow {
	w, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return w
}

func (w *Workflow) StateAttr() string {
	return w.stateAttr
}

// DefaultStateName returns the state which new objects should be created with.
func (w *Workflow) DefaultStateName() string {
	return w.names[w.defaultState]
}

// StateNames returns the names of all states in declaration order.
func (w *Workflow) StateNames() []string {
	return append([]string(nil), w.names...)
}

func (w *Workflow) StateID(name string) (StateID, bool) {
	id, ok := w.ids[name]
	return id, ok
}

// StateName returns the name of a state, or "" if the id is out of range.
func (w *Workflow) StateName(id StateID) string {
	if id < 0 || int(id) >= len(w.names) {
		return ""
	}
	return w.names[id]
}

func (w *Workflow) State(name string) (*State, bool) {
	id, ok := w.ids[name]
	if !ok {
		return nil, false
	}
	return w.states[id], true
}

func (w *Workflow) Transition(name string) (*Transition, bool) {
	t, ok := w.transitions[name]
	return t, ok
}

// TransitionNames returns the names of all transitions in declaration order.
func (w *Workflow) TransitionNames() []string {
	return append([]string(nil), w.tnames...)
}

// current determines the state of obj. An empty attribute means the default state.
func (w *Workflow) current(obj Object) (StateID, error) {
	name := obj.Attr(w.stateAttr)
	if name == "" {
		return w.defaultState, nil
	}
	if id, ok := w.ids[name]; ok {
		return id, nil
	}
	if w.lenient {
		w.log.Warn("unknown workflow state, using default state",
			zap.String("state", name),
			zap.String("default", w.names[w.defaultState]),
		)
		return w.defaultState, nil
	}
	return 0, &unknownStateError{name}
}

// CurrentState returns the name of the state which obj is in.
func (w *Workflow) CurrentState(obj Object) (string, error) {
	id, err := w.current(obj)
	if err != nil {
		return "", err
	}
	return w.names[id], nil
}

// InState returns whether obj is in the given state. It returns false on errors.
func (w *Workflow) InState(obj Object, name string) bool {
	current, err := w.CurrentState(obj)
	return err == nil && current == name
}

// AvailableTransitions returns the names of the transitions whose source state is the current state of obj.
func (w *Workflow) AvailableTransitions(obj Object) []string {
	id, err := w.current(obj)
	if err != nil {
		return nil
	}
	var result []string
	for _, name := range w.tnames {
		if w.transitions[name].from == id {
			result = append(result, name)
		}
	}
	return result
}

// ResolveACL returns the access control entries of obj according to its current state.
//
// The order of the rules in the state is preserved, because the evaluation stops at the first match.
// Rules whose principal can't be resolved for obj are omitted.
func (w *Workflow) ResolveACL(obj Object) ([]ACE, error) {
	id, err := w.current(obj)
	if err != nil {
		return nil, err
	}
	var rules = w.states[id].rules
	var acl = make([]ACE, 0, len(rules))
	for _, rule := range rules {
		principal, ok := rule.principal(obj)
		if !ok {
			continue
		}
		acl = append(acl, ACE{
			Effect:    rule.Effect,
			Principal: principal,
			Actions:   rule.Actions,
		})
	}
	return acl, nil
}

// Transit applies a transition to obj. It does not persist anything.
func (w *Workflow) Transit(t *Transition, obj Object) (bool, error) {
	return t.Apply(obj, w)
}

func (w *Workflow) TransitByName(name string, obj Object) (bool, error) {
	t, ok := w.transitions[name]
	if !ok {
		return false, &unknownTransitionError{name}
	}
	return w.Transit(t, obj)
}

type unknownStateError struct {
	name string
}

func (e *unknownStateError) Error() string {
	return ErrUnknownState.Error() + ": " + e.name
}

func (e *unknownStateError) Unwrap() error {
	return ErrUnknownState
}

type unknownTransitionError struct {
	name string
}

func (e *unknownTransitionError) Error() string {
	return ErrUnknownTransition.Error() + ": " + e.name
}

func (e *unknownTransitionError) Unwrap() error {
	return ErrUnknownTransition
}
