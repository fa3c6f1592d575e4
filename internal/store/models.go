package store

import "time"

// MessageKind discriminates chat message payloads.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
)

// Message is one chat message between two users. Messages are created by the
// dispatcher and mutated only to flip the seen flag when the recipient reads
// the thread; the core never deletes them.
type Message struct {
	ID         string      `gorm:"primaryKey" json:"id"`
	FromUserID string      `gorm:"index" json:"from_user_id"`
	ToUserID   string      `gorm:"index" json:"to_user_id"`
	Text       string      `json:"text,omitempty"`
	MediaURL   string      `json:"media_url,omitempty"`
	Kind       MessageKind `json:"message_type"`
	Seen       bool        `json:"seen"`
	CreatedAt  time.Time   `json:"created_at"`
}

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusAccepted RequestStatus = "Accepted"
)

// ConnectionRequest is owned by the connection-graph subsystem. The workflow
// scheduler only reads it, to decide whether a reminder is still warranted.
type ConnectionRequest struct {
	ID         string        `gorm:"primaryKey" json:"id"`
	FromUserID string        `gorm:"index" json:"from_user_id"`
	ToUserID   string        `gorm:"index" json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// User carries the directory metadata the core denormalizes into delivery
// payloads, plus the address notifications go to. Profile CRUD lives outside
// this core.
type User struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RunState is the scheduler-visible state of a workflow run.
type RunState string

const (
	// RunRunning: a step is (nominally) executing. A run stuck here past the
	// grace period is treated as interrupted and re-driven.
	RunRunning RunState = "running"
	// RunSuspended: durably parked until ResumeAt.
	RunSuspended RunState = "suspended"
	// RunCompleted: final; the scheduler never touches it again.
	RunCompleted RunState = "completed"
)

// WorkflowRun is the durable checkpoint for one execution of a multi-step
// workflow. (workflow, subject id, step index) is the idempotence key for
// step side effects: StepIndex only advances after a step's side effect
// succeeded, so a resumed run re-enters at the first unfinished step.
type WorkflowRun struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	Workflow  string     `gorm:"index" json:"workflow"`
	SubjectID string     `gorm:"index" json:"subject_id"`
	StepIndex int        `json:"step_index"`
	State     RunState   `gorm:"index" json:"state"`
	ResumeAt  *time.Time `json:"resume_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
