package core

import (
	"github.com/wansing/blog/auth"
	"github.com/wansing/blog/workflow"
	"go.uber.org/zap"
)

const (
	// StateAttr is the object attribute which holds the workflow state of posts and the blog.
	StateAttr = workflow.DefaultStateAttr

	StatePrivate = "private"
	StatePublic  = "public"

	TransitionPublish = "publish"
	TransitionHide    = "hide"

	ActionView = "view"
	ActionEdit = "edit"
)

var (
	viewing  = workflow.NewActions(ActionView)
	managing = workflow.NewActions(ActionView, ActionEdit)
	author   = workflow.AttrPrincipal("author_id", "user:")
)

// Everyone can view public posts. Only the author and admins can manage them.
var publicState = workflow.NewState(
	workflow.NewRule(workflow.Allow, workflow.Everyone, viewing),
	workflow.NewDynamicRule(workflow.Allow, author, managing),
	workflow.NewRule(workflow.Allow, auth.GroupPrincipal(auth.AdminGroup), managing),
	workflow.DenyAll,
)

// Only the author and admins can view or manage private posts.
var privateState = workflow.NewState(
	workflow.NewDynamicRule(workflow.Allow, author, managing),
	workflow.NewRule(workflow.Allow, auth.GroupPrincipal(auth.AdminGroup), managing),
	workflow.DenyAll,
)

// PostWorkflow returns the workflow of blog posts. New posts are private.
func PostWorkflow(lenient bool, log *zap.Logger) (*workflow.Workflow, error) {
	return workflow.New(workflow.Config{
		StateAttr: StateAttr,
		States: []workflow.StateDef{
			{Name: StatePrivate, State: privateState},
			{Name: StatePublic, State: publicState},
		},
		Transitions: []workflow.TransitionDef{
			{Name: TransitionPublish, From: StatePrivate, To: StatePublic},
			{Name: TransitionHide, From: StatePublic, To: StatePrivate},
		},
		DefaultState: StatePrivate,
		Lenient:      lenient,
		Logger:       log,
	})
}
