package dispatch

import (
	"context"
	"fmt"

	"github.com/projtrack-notify/internal/domain"
	"github.com/projtrack-notify/internal/pkg/validate"
)

const dueDateLayout = "Jan 2, 2006"

func ref(kind, id string) *string {
	s := kind + ":" + id
	return &s
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	return nil
}

// ProjectAssigned notifies the students placed on a project.
func (d *Dispatcher) ProjectAssigned(ctx context.Context, e domain.ProjectAssignment) (*domain.DispatchResult, error) {
	if err := check(e); err != nil {
		return nil, err
	}
	body := fmt.Sprintf("You have been assigned to project %q", e.ProjectTitle)
	if e.AssignedBy != "" {
		body += " by " + e.AssignedBy
	}
	return d.Dispatch(ctx, domain.NotificationInput{
		Title:         "New Project",
		Body:          body,
		Type:          domain.TypeProject,
		Recipients:    e.StudentIDs,
		RecipientKind: domain.RecipientStudent,
		RelatedRef:    ref("project", e.ProjectID),
	})
}

// TaskAssigned notifies the students a task was assigned to.
func (d *Dispatcher) TaskAssigned(ctx context.Context, e domain.TaskAssignment) (*domain.DispatchResult, error) {
	if err := check(e); err != nil {
		return nil, err
	}
	body := e.TaskTitle
	if e.ProjectTitle != "" {
		body += " in " + e.ProjectTitle
	}
	if e.DueDate != nil {
		body += " (due " + e.DueDate.Format(dueDateLayout) + ")"
	}
	return d.Dispatch(ctx, domain.NotificationInput{
		Title:         "New Task",
		Body:          body,
		Type:          domain.TypeActivity,
		Recipients:    e.StudentIDs,
		RecipientKind: domain.RecipientStudent,
		RelatedRef:    ref("task", e.TaskID),
	})
}

// ReviewPosted notifies a project's students that a guide or in-charge reviewed it.
func (d *Dispatcher) ReviewPosted(ctx context.Context, e domain.ReviewPosted) (*domain.DispatchResult, error) {
	if err := check(e); err != nil {
		return nil, err
	}
	role := "Guide"
	if e.ReviewerRole == domain.ReviewerIncharge {
		role = "Project In-charge"
	}
	return d.Dispatch(ctx, domain.NotificationInput{
		Title:         "New Review",
		Body:          fmt.Sprintf("%s (%s) posted a review on %q", e.ReviewerName, role, e.ProjectTitle),
		Type:          domain.TypeReview,
		Recipients:    e.StudentIDs,
		RecipientKind: domain.RecipientStudent,
		RelatedRef:    ref("project", e.ProjectID),
	})
}

// ForumPostCreated broadcasts a new forum post to every active student.
// With no active students nothing is recorded and the result has no notification.
func (d *Dispatcher) ForumPostCreated(ctx context.Context, e domain.ForumPost) (*domain.DispatchResult, error) {
	if err := check(e); err != nil {
		return nil, err
	}
	students, err := d.roster.ActiveStudentIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return &domain.DispatchResult{}, nil
	}
	body := e.Title
	if e.AuthorName != "" {
		body = e.AuthorName + " posted: " + e.Title
	}
	return d.Dispatch(ctx, domain.NotificationInput{
		Title:         "New Forum Post",
		Body:          body,
		Type:          domain.TypeForum,
		Recipients:    students,
		RecipientKind: domain.RecipientStudent,
		RelatedRef:    ref("forum", e.PostID),
	})
}

// TaskCompleted notifies the faculty member who owns the task.
func (d *Dispatcher) TaskCompleted(ctx context.Context, e domain.TaskCompletion) (*domain.DispatchResult, error) {
	if err := check(e); err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, domain.NotificationInput{
		Title:         "Task Completed",
		Body:          fmt.Sprintf("%s completed %q", e.StudentName, e.TaskTitle),
		Type:          domain.TypeActivity,
		Recipients:    []string{e.FacultyID},
		RecipientKind: domain.RecipientFaculty,
		RelatedRef:    ref("task", e.TaskID),
	})
}
