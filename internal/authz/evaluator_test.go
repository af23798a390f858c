package authz

import (
	"context"
	"testing"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestAllow_AdminUnrestricted(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	for _, action := range []string{ActionRead, ActionCreate, ActionUpdate, ActionUpdateStatus, ActionDelete} {
		for _, resource := range []string{ResourceProject, ResourceTask, ResourceUser, ResourceNotification, ResourceComment} {
			ok, err := e.Allow(ctx, Input{Role: "ADMIN", Action: action, Resource: resource})
			if err != nil {
				t.Fatalf("Allow(ADMIN %s %s): %v", action, resource, err)
			}
			if !ok {
				t.Errorf("ADMIN %s %s should be allowed", action, resource)
			}
		}
	}
}

func TestAllow_MemberProjectRead(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	ok, err := e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionRead, Resource: ResourceProject, IsProjectMember: true})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Error("approved member reading own project should be allowed")
	}

	ok, err = e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionRead, Resource: ResourceProject, IsProjectMember: false})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("member reading a project they do not belong to should be denied")
	}
}

func TestAllow_MemberCannotMutateProject(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	for _, action := range []string{ActionCreate, ActionUpdate, ActionDelete} {
		ok, err := e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: action, Resource: ResourceProject, IsProjectMember: true})
		if err != nil {
			t.Fatalf("Allow(%s): %v", action, err)
		}
		if ok {
			t.Errorf("member %s project should be denied even as a member", action)
		}
	}
}

func TestAllow_TaskStatusByAssignee(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	ok, err := e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionUpdateStatus, Resource: ResourceTask, IsTaskAssignee: true})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Error("assignee updating task status should be allowed")
	}

	ok, err = e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionUpdateStatus, Resource: ResourceTask, IsProjectMember: true, IsTaskAssignee: false})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("non-assignee member updating task status should be denied")
	}
}

func TestAllow_UnapprovedMemberDeniedEverything(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	ok, err := e.Allow(ctx, Input{Role: "MEMBER", Approved: false, Action: ActionRead, Resource: ResourceProject, IsProjectMember: true})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("unapproved member should be denied")
	}
}

func TestAllow_NotificationSelfOnly(t *testing.T) {
	e := newEvaluator(t)
	ctx := context.Background()

	ok, err := e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionUpdate, Resource: ResourceNotification, IsSelf: true})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Error("member marking own notification should be allowed")
	}

	ok, err = e.Allow(ctx, Input{Role: "MEMBER", Approved: true, Action: ActionUpdate, Resource: ResourceNotification, IsSelf: false})
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("member touching another user's notification should be denied")
	}
}

func TestHealthCheck(t *testing.T) {
	e := newEvaluator(t)
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
