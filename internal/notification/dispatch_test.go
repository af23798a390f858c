package notification

import (
	"testing"
	"time"

	"project-management/backend/internal/notification/domain"
)

func TestForTaskEventAssigned(t *testing.T) {
	now := time.Now()
	got := ForTaskEvent(TaskEvent{
		Kind:         TaskAssigned,
		TaskID:       "t1",
		TaskTitle:    "Fix login",
		ProjectTitle: "Website",
		ActorID:      "admin",
		AssigneeID:   "member",
	}, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	n := got[0]
	if n.RecipientID != "member" || n.Type != domain.TypeTask || n.SubjectID != "t1" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.IsRead {
		t.Fatal("new notification must be unread")
	}
}

func TestForTaskEventAssignedToSelf(t *testing.T) {
	got := ForTaskEvent(TaskEvent{
		Kind:       TaskAssigned,
		ActorID:    "u1",
		AssigneeID: "u1",
	}, time.Now())
	if len(got) != 0 {
		t.Fatalf("actor must not be notified about own action, got %d", len(got))
	}
}

func TestForTaskEventStatusChanged(t *testing.T) {
	got := ForTaskEvent(TaskEvent{
		Kind:       TaskStatusChanged,
		TaskID:     "t1",
		TaskTitle:  "Fix login",
		ActorID:    "assignee",
		AssigneeID: "assignee",
		OwnerID:    "owner",
		NewStatus:  "DONE",
	}, time.Now())
	if len(got) != 1 {
		t.Fatalf("expected only the owner, got %d", len(got))
	}
	if got[0].RecipientID != "owner" {
		t.Fatalf("recipient = %s, want owner", got[0].RecipientID)
	}
}

func TestForTaskEventStatusChangedNoDuplicateOwnerAssignee(t *testing.T) {
	got := ForTaskEvent(TaskEvent{
		Kind:       TaskStatusChanged,
		ActorID:    "admin",
		AssigneeID: "u1",
		OwnerID:    "u1",
		NewStatus:  "DONE",
	}, time.Now())
	if len(got) != 1 {
		t.Fatalf("owner who is also assignee must get one notification, got %d", len(got))
	}
}

func TestForProjectEventUpdated(t *testing.T) {
	got := ForProjectEvent(ProjectEvent{
		Kind:         ProjectUpdated,
		ProjectID:    "p1",
		ProjectTitle: "Website",
		ActorID:      "admin",
		MemberIDs:    []string{"a", "admin", "b", "a"},
	}, time.Now())
	if len(got) != 2 {
		t.Fatalf("expected deduplicated non-actor recipients, got %d", len(got))
	}
	for _, n := range got {
		if n.Type != domain.TypeProject || n.SubjectID != "p1" {
			t.Fatalf("unexpected notification: %+v", n)
		}
	}
}

func TestForProjectEventMemberAdded(t *testing.T) {
	got := ForProjectEvent(ProjectEvent{
		Kind:         ProjectMemberAdded,
		ProjectID:    "p1",
		ProjectTitle: "Website",
		ActorID:      "admin",
		MemberIDs:    []string{"newbie"},
	}, time.Now())
	if len(got) != 1 || got[0].RecipientID != "newbie" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
