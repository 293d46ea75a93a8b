package workflow

import "fmt"

// A Transition moves an object from one state to another. It is bound to the Workflow which registered it.
type Transition struct {
	owner *Workflow
	name  string
	from  StateID
	to    StateID
}

func (t *Transition) Name() string {
	return t.name
}

func (t *Transition) From() StateID {
	return t.from
}

func (t *Transition) To() StateID {
	return t.to
}

// Apply changes the state of obj from the source to the target state of the transition.
//
// It returns false if obj is already in the target state, so applying a transition twice is harmless.
// If obj is in neither state, an *InvalidTransitionError is returned and obj is not modified.
// A transition can only be applied within the Workflow which registered it, else ErrForeignTransition is returned.
func (t *Transition) Apply(obj Object, w *Workflow) (bool, error) {

	if t == nil {
		return false, ErrUnknownTransition
	}
	if w == nil || t.owner != w {
		return false, fmt.Errorf("%w: %s", ErrForeignTransition, t.name)
	}

	current, err := w.current(obj)
	if err != nil {
		return false, err
	}

	switch current {
	case t.to:
		return false, nil
	case t.from:
		obj.SetAttr(w.stateAttr, w.names[t.to])
		return true, nil
	default:
		return false, &InvalidTransitionError{
			Transition: t.name,
			State:      w.names[current],
		}
	}
}
