// Package notification turns workflow events into notification rows. The
// builders are pure; the emitting service persists the result inside the same
// transaction as the mutation that produced the event.
package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"project-management/backend/internal/notification/domain"
)

// TaskEventKind names the task mutations that produce notifications.
type TaskEventKind string

const (
	TaskAssigned      TaskEventKind = "assigned"
	TaskStatusChanged TaskEventKind = "status_changed"
)

// TaskEvent is a workflow event emitted by the task engine. ActorID is the
// session user who caused it; actors never receive notifications about their
// own actions.
type TaskEvent struct {
	Kind         TaskEventKind
	TaskID       string
	TaskTitle    string
	ProjectTitle string
	ActorID      string
	AssigneeID   string // empty when unassigned
	OwnerID      string
	NewStatus    string // set for status changes
}

// ProjectEventKind names the project mutations that produce notifications.
type ProjectEventKind string

const (
	ProjectUpdated     ProjectEventKind = "updated"
	ProjectMemberAdded ProjectEventKind = "member_added"
)

// ProjectEvent is a workflow event emitted on project-level changes.
type ProjectEvent struct {
	Kind         ProjectEventKind
	ProjectID    string
	ProjectTitle string
	ActorID      string
	// MemberIDs are the recipients in scope: all members for an update, the
	// added user for a member addition.
	MemberIDs []string
}

// ForTaskEvent returns the notifications a task event produces, one per
// recipient, unread. The actor is excluded.
func ForTaskEvent(ev TaskEvent, now time.Time) []*domain.Notification {
	var out []*domain.Notification
	switch ev.Kind {
	case TaskAssigned:
		if ev.AssigneeID != "" && ev.AssigneeID != ev.ActorID {
			out = append(out, build(ev.AssigneeID, domain.TypeTask, ev.TaskID,
				"Task assigned",
				fmt.Sprintf("You have been assigned %q in project %q", ev.TaskTitle, ev.ProjectTitle), now))
		}
	case TaskStatusChanged:
		title := "Task status updated"
		msg := fmt.Sprintf("Task %q moved to %s", ev.TaskTitle, ev.NewStatus)
		if ev.AssigneeID != "" && ev.AssigneeID != ev.ActorID {
			out = append(out, build(ev.AssigneeID, domain.TypeTask, ev.TaskID, title, msg, now))
		}
		if ev.OwnerID != "" && ev.OwnerID != ev.ActorID && ev.OwnerID != ev.AssigneeID {
			out = append(out, build(ev.OwnerID, domain.TypeTask, ev.TaskID, title, msg, now))
		}
	}
	return out
}

// ForProjectEvent returns the notifications a project event produces. The actor
// is excluded from the recipient set.
func ForProjectEvent(ev ProjectEvent, now time.Time) []*domain.Notification {
	var title, msg string
	switch ev.Kind {
	case ProjectUpdated:
		title = "Project updated"
		msg = fmt.Sprintf("Project %q has been updated", ev.ProjectTitle)
	case ProjectMemberAdded:
		title = "Added to project"
		msg = fmt.Sprintf("You have been added to project %q", ev.ProjectTitle)
	default:
		return nil
	}
	var out []*domain.Notification
	seen := map[string]bool{ev.ActorID: true}
	for _, uid := range ev.MemberIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		out = append(out, build(uid, domain.TypeProject, ev.ProjectID, title, msg, now))
	}
	return out
}

func build(recipient string, typ domain.Type, subjectID, title, msg string, now time.Time) *domain.Notification {
	return &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipient,
		Type:        typ,
		SubjectID:   subjectID,
		Title:       title,
		Message:     msg,
		IsRead:      false,
		CreatedAt:   now,
	}
}
