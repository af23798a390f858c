// Package authz evaluates role- and membership-based access decisions using OPA Rego.
// Services resolve membership/ownership facts, build an Input, and ask Allow; they
// translate a deny into Forbidden (mutations) or NotFound (hidden reads) themselves.
package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Actions understood by the access policy.
const (
	ActionRead         = "read"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionUpdateStatus = "update_status"
	ActionDelete       = "delete"
)

// Resources understood by the access policy.
const (
	ResourceProject      = "project"
	ResourceTask         = "task"
	ResourceUser         = "user"
	ResourceNotification = "notification"
	ResourceComment      = "comment"
)

const accessPolicyPackage = "pm.access"

// Access policy: ADMIN is unrestricted; MEMBER is scoped to projects they belong
// to, tasks they are assigned (status only), and entities they own.
const accessPolicy = `package pm.access

default allow = false

allow if {
	input.role == "ADMIN"
}

allow if {
	input.role == "MEMBER"
	input.approved
	member_allow
}

member_allow if {
	input.action == "read"
	input.resource == "project"
	input.is_project_member
}

member_allow if {
	input.action == "read"
	input.resource == "task"
	input.is_project_member
}

member_allow if {
	input.action == "update_status"
	input.resource == "task"
	input.is_task_assignee
}

member_allow if {
	input.resource == "user"
	input.is_self
}

member_allow if {
	input.resource == "notification"
	input.is_self
}

member_allow if {
	input.action == "read"
	input.resource == "comment"
	input.is_project_member
}

member_allow if {
	input.action == "create"
	input.resource == "comment"
	input.is_project_member
}

member_allow if {
	input.action == "delete"
	input.resource == "comment"
	input.is_self
}
`

// Input carries the facts the access policy decides on. The caller resolves
// membership and ownership before evaluation; the policy itself does no I/O.
type Input struct {
	// Role is the caller's role from the session token (ADMIN or MEMBER).
	Role string
	// Approved is the caller's approval state resolved from the store.
	Approved bool
	// Action is one of the Action* constants.
	Action string
	// Resource is one of the Resource* constants.
	Resource string
	// IsProjectMember is true when the caller belongs to (or owns) the project in scope.
	IsProjectMember bool
	// IsTaskAssignee is true when the caller is the task's assignee.
	IsTaskAssignee bool
	// IsSelf is true when the entity in scope belongs to the caller (own user
	// record, own notification, own comment).
	IsSelf bool
}

// Evaluator evaluates the embedded access policy with OPA Rego.
type Evaluator struct {
	compiler *ast.Compiler
}

// NewEvaluator compiles the embedded access policy. Fails only on a broken policy.
func NewEvaluator() (*Evaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": accessPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return &Evaluator{compiler: compiler}, nil
}

// Allow evaluates the access policy for the given input. Returns the policy
// decision; an error means the engine failed, not that access was denied.
func (e *Evaluator) Allow(ctx context.Context, in Input) (bool, error) {
	input := map[string]interface{}{
		"role":              in.Role,
		"approved":          in.Approved,
		"action":            in.Action,
		"resource":          in.Resource,
		"is_project_member": in.IsProjectMember,
		"is_task_assignee":  in.IsTaskAssignee,
		"is_self":           in.IsSelf,
	}
	q := rego.New(
		rego.Query("data."+accessPolicyPackage+".allow"),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("access policy returned non-boolean result")
	}
	return allowed, nil
}

// HealthCheck verifies the in-process Rego engine can evaluate the access policy.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, Input{Role: "ADMIN", Action: ActionRead, Resource: ResourceProject})
	return err
}
