package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/blog/workflow"
)

var workflowTmpl = tmpl(`<h1>Post workflow</h1>

	<p>New posts are <strong>{{ .DefaultState }}</strong>. The first matching rule decides.</p>

	{{ range .States }}
		<h2>{{ .Name }}</h2>
		<table class="table table-sm">
			<thead>
				<tr>
					<th>Effect</th>
					<th>Principal</th>
					<th>Actions</th>
				</tr>
			</thead>
			<tbody>
				{{ range .Rules }}
					<tr>
						<td>{{ .Effect }}</td>
						<td>{{ if .Resolve }}<em>dynamic</em>{{ else }}{{ .Principal }}{{ end }}</td>
						<td>{{ .Actions }}</td>
					</tr>
				{{ end }}
			</tbody>
		</table>
	{{ end }}

	<h2>Transitions</h2>

	<ul>
		{{ range .Transitions }}
			<li>{{ .Name }}: {{ .From }} &rarr; {{ .To }}</li>
		{{ end }}
	</ul>`)

type workflowState struct {
	Name  string
	Rules []workflow.Rule
}

type workflowTransition struct {
	Name string
	From string
	To   string
}

type workflowData struct {
	*context
	DefaultState string
	States       []workflowState
	Transitions  []workflowTransition
}

func workflowView(wf *workflow.Workflow) ([]workflowState, []workflowTransition) {
	var states []workflowState
	for _, name := range wf.StateNames() {
		if state, ok := wf.State(name); ok {
			states = append(states, workflowState{
				Name:  name,
				Rules: state.Rules(),
			})
		}
	}
	var transitions []workflowTransition
	for _, name := range wf.TransitionNames() {
		if t, ok := wf.Transition(name); ok {
			transitions = append(transitions, workflowTransition{
				Name: name,
				From: wf.StateName(t.From()),
				To:   wf.StateName(t.To()),
			})
		}
	}
	return states, transitions
}

func workflowPage(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	if err := ctx.requireAdmin(); err != nil {
		return err
	}

	var data = &workflowData{
		context:      ctx,
		DefaultState: ctx.db.Workflow.DefaultStateName(),
	}
	data.States, data.Transitions = workflowView(ctx.db.Workflow)

	return workflowTmpl.Execute(w, data)
}
