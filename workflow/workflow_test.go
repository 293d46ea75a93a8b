package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type object map[string]string

func (o object) Attr(name string) string {
	return o[name]
}

func (o object) SetAttr(name, value string) {
	o[name] = value
}

var (
	viewing  = NewActions("view")
	managing = NewActions("view", "edit")
)

func testConfig() Config {

	var public = NewState(
		NewRule(Allow, Everyone, viewing),
		NewDynamicRule(Allow, AttrPrincipal("author_id", "user:"), managing),
		NewRule(Allow, "group:admin", managing),
		DenyAll,
	)

	var private = NewState(
		NewDynamicRule(Allow, AttrPrincipal("author_id", "user:"), managing),
		NewRule(Allow, "group:admin", managing),
		DenyAll,
	)

	return Config{
		States: []StateDef{
			{Name: "private", State: private},
			{Name: "public", State: public},
		},
		Transitions: []TransitionDef{
			{Name: "publish", From: "private", To: "public"},
			{Name: "hide", From: "public", To: "private"},
		},
		DefaultState: "private",
	}
}

func testWorkflow(t *testing.T) *Workflow {
	w, err := New(testConfig())
	require.NoError(t, err)
	return w
}

func TestPublishChangesState(t *testing.T) {
	w := testWorkflow(t)
	post := object{"state": "private"}

	changed, err := w.TransitByName("publish", post)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "public", post["state"])
}

func TestPublishIsIdempotent(t *testing.T) {
	w := testWorkflow(t)
	post := object{"state": "public"}

	publish, ok := w.Transition("publish")
	require.True(t, ok)

	changed, err := w.Transit(publish, post)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "public", post["state"])
}

func TestInvalidTransition(t *testing.T) {

	// three states, so that an object can be in neither state of a transition
	cfg := testConfig()
	cfg.States = append(cfg.States, StateDef{Name: "archived", State: NewState(DenyAll)})
	w, err := New(cfg)
	require.NoError(t, err)

	post := object{"state": "archived"}

	changed, err := w.TransitByName("publish", post)
	assert.False(t, changed)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "publish", invalid.Transition)
	assert.Equal(t, "archived", invalid.State)
	assert.Equal(t, "archived", post["state"])
}

func TestHideFromPublic(t *testing.T) {
	w := testWorkflow(t)
	post := object{"state": "public"}

	changed, err := w.TransitByName("hide", post)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "private", post["state"])

	// empty state is the default state, which is the target of hide
	changed, err = w.TransitByName("hide", object{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTransitionOfOtherWorkflow(t *testing.T) {

	cfg := testConfig()
	cfg.States = append(cfg.States, StateDef{Name: "archived", State: NewState(DenyAll)})
	cfg.Transitions = append(cfg.Transitions, TransitionDef{Name: "archive", From: "private", To: "archived"})
	large, err := New(cfg)
	require.NoError(t, err)
	archive, ok := large.Transition("archive")
	require.True(t, ok)

	small := testWorkflow(t)
	post := object{"state": "private"}

	changed, err := small.Transit(archive, post)
	assert.False(t, changed)
	assert.True(t, errors.Is(err, ErrForeignTransition))
	assert.Equal(t, "private", post["state"])

	// same config, but still another workflow
	publish, ok := testWorkflow(t).Transition("publish")
	require.True(t, ok)
	_, err = small.Transit(publish, post)
	assert.True(t, errors.Is(err, ErrForeignTransition))
	assert.Equal(t, "private", post["state"])

	_, err = small.Transit(nil, post)
	assert.True(t, errors.Is(err, ErrUnknownTransition))
}

func TestUnknownTransition(t *testing.T) {
	w := testWorkflow(t)
	_, err := w.TransitByName("archive", object{})
	assert.True(t, errors.Is(err, ErrUnknownTransition))
}

func TestResolveACLOrder(t *testing.T) {
	w := testWorkflow(t)

	acl, err := w.ResolveACL(object{"state": "public", "author_id": "7"})
	require.NoError(t, err)
	require.Len(t, acl, 4)

	assert.Equal(t, ACE{Allow, Everyone, viewing}, acl[0])
	assert.Equal(t, ACE{Allow, "user:7", managing}, acl[1])
	assert.Equal(t, ACE{Allow, "group:admin", managing}, acl[2])
	assert.Equal(t, ACE{Deny, Everyone, AllActions}, acl[3])
}

func TestResolveACLWithoutAuthor(t *testing.T) {
	w := testWorkflow(t)

	acl, err := w.ResolveACL(object{"state": "public"})
	require.NoError(t, err)
	require.Len(t, acl, 3)

	assert.Equal(t, Everyone, acl[0].Principal)
	assert.Equal(t, "group:admin", acl[1].Principal)
	assert.Equal(t, Deny, acl[2].Effect)
}

func TestDefaultStateFallback(t *testing.T) {
	w := testWorkflow(t)

	unset, err := w.ResolveACL(object{"author_id": "3"})
	require.NoError(t, err)

	explicit, err := w.ResolveACL(object{"state": w.DefaultStateName(), "author_id": "3"})
	require.NoError(t, err)

	assert.Equal(t, explicit, unset)
}

func TestUnknownStateStrict(t *testing.T) {
	w := testWorkflow(t)

	_, err := w.ResolveACL(object{"state": "deleted"})
	assert.True(t, errors.Is(err, ErrUnknownState))

	_, err = w.TransitByName("publish", object{"state": "deleted"})
	assert.True(t, errors.Is(err, ErrUnknownState))

	assert.False(t, w.InState(object{"state": "deleted"}, "private"))
	assert.Empty(t, w.AvailableTransitions(object{"state": "deleted"}))
}

func TestUnknownStateLenient(t *testing.T) {

	observed, logs := observer.New(zap.WarnLevel)

	cfg := testConfig()
	cfg.Lenient = true
	cfg.Logger = zap.New(observed)
	w, err := New(cfg)
	require.NoError(t, err)

	acl, err := w.ResolveACL(object{"state": "deleted"})
	require.NoError(t, err)

	expected, err := w.ResolveACL(object{"state": "private"})
	require.NoError(t, err)
	assert.Equal(t, expected, acl)
	assert.Equal(t, 1, logs.FilterField(zap.String("state", "deleted")).Len())
}

func TestStateNameRoundTrip(t *testing.T) {
	w := testWorkflow(t)
	for _, name := range w.StateNames() {
		id, ok := w.StateID(name)
		require.True(t, ok)
		assert.Equal(t, name, w.StateName(id))
	}
	assert.Equal(t, "", w.StateName(StateID(42)))
	assert.Equal(t, []string{"private", "public"}, w.StateNames())
}

func TestAvailableTransitions(t *testing.T) {
	w := testWorkflow(t)
	assert.Equal(t, []string{"publish"}, w.AvailableTransitions(object{}))
	assert.Equal(t, []string{"hide"}, w.AvailableTransitions(object{"state": "public"}))
	assert.Equal(t, []string{"publish", "hide"}, w.TransitionNames())
}

func TestCustomStateAttr(t *testing.T) {
	cfg := testConfig()
	cfg.StateAttr = "status"
	w, err := New(cfg)
	require.NoError(t, err)

	post := object{"status": "private", "state": "garbage"}
	changed, err := w.TransitByName("publish", post)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "public", post["status"])
	assert.Equal(t, "garbage", post["state"])
}

func TestConfigurationErrors(t *testing.T) {

	shared := NewState(DenyAll)

	tests := map[string]func(cfg *Config){
		"missing default": func(cfg *Config) {
			cfg.DefaultState = "draft"
		},
		"empty default": func(cfg *Config) {
			cfg.DefaultState = ""
		},
		"dangling source": func(cfg *Config) {
			cfg.Transitions = append(cfg.Transitions, TransitionDef{Name: "archive", From: "draft", To: "private"})
		},
		"dangling target": func(cfg *Config) {
			cfg.Transitions = append(cfg.Transitions, TransitionDef{Name: "archive", From: "public", To: "archived"})
		},
		"duplicate transition": func(cfg *Config) {
			cfg.Transitions = append(cfg.Transitions, TransitionDef{Name: "publish", From: "private", To: "public"})
		},
		"aliased state": func(cfg *Config) {
			cfg.States = append(cfg.States, StateDef{Name: "a", State: shared}, StateDef{Name: "b", State: shared})
		},
		"duplicate state name": func(cfg *Config) {
			cfg.States = append(cfg.States, StateDef{Name: "public", State: NewState(DenyAll)})
		},
		"nil state": func(cfg *Config) {
			cfg.States = append(cfg.States, StateDef{Name: "nil"})
		},
		"empty actions": func(cfg *Config) {
			cfg.States = append(cfg.States, StateDef{Name: "empty", State: NewState(NewRule(Allow, Everyone, NewActions()))})
		},
		"no principal": func(cfg *Config) {
			cfg.States = append(cfg.States, StateDef{Name: "nobody", State: NewState(NewRule(Allow, "", viewing))})
		},
		"no states": func(cfg *Config) {
			cfg.States = nil
		},
	}

	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			modify(&cfg)
			w, err := New(cfg)
			assert.Nil(t, w)
			var configErr *ConfigurationError
			assert.True(t, errors.As(err, &configErr), "got %v", err)
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultState = "draft"
	assert.Panics(t, func() { MustNew(cfg) })
}

func TestStateIsImmutable(t *testing.T) {
	rules := []Rule{NewRule(Allow, Everyone, viewing)}
	state := NewState(rules...)
	rules[0].Principal = "group:admin"

	got := state.Rules()
	got[0].Effect = Deny

	assert.Equal(t, Everyone, state.Rules()[0].Principal)
	assert.Equal(t, Allow, state.Rules()[0].Effect)
	assert.Equal(t, 1, state.Len())
}
