package domain

import "time"

// ProjectAssignment is raised when students are placed on a project.
type ProjectAssignment struct {
	ProjectID    string   `json:"project_id" validate:"required"`
	ProjectTitle string   `json:"project_title" validate:"required"`
	AssignedBy   string   `json:"assigned_by"`
	StudentIDs   []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// TaskAssignment is raised when a task on a project board is assigned.
type TaskAssignment struct {
	TaskID       string     `json:"task_id" validate:"required"`
	TaskTitle    string     `json:"task_title" validate:"required"`
	ProjectID    string     `json:"project_id"`
	ProjectTitle string     `json:"project_title"`
	DueDate      *time.Time `json:"due_date"`
	StudentIDs   []string   `json:"student_ids" validate:"required,min=1,dive,required"`
}

// ReviewerRole tags which faculty role authored a review. It is set by the producer, never inferred.
type ReviewerRole string

const (
	ReviewerGuide    ReviewerRole = "guide"
	ReviewerIncharge ReviewerRole = "incharge"
)

// ReviewPosted is raised when faculty post a review on a project.
type ReviewPosted struct {
	ProjectID    string       `json:"project_id" validate:"required"`
	ProjectTitle string       `json:"project_title" validate:"required"`
	ReviewerName string       `json:"reviewer_name" validate:"required"`
	ReviewerRole ReviewerRole `json:"reviewer_role" validate:"required,oneof=guide incharge"`
	StudentIDs   []string     `json:"student_ids" validate:"required,min=1,dive,required"`
}

// ForumPost is raised when a forum post is published; it is broadcast to every active student.
type ForumPost struct {
	PostID     string `json:"post_id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	AuthorName string `json:"author_name"`
}

// TaskCompletion is raised when a student completes a task; it goes to the owning faculty member.
type TaskCompletion struct {
	TaskID      string `json:"task_id" validate:"required"`
	TaskTitle   string `json:"task_title" validate:"required"`
	StudentName string `json:"student_name" validate:"required"`
	FacultyID   string `json:"faculty_id" validate:"required"`
}
