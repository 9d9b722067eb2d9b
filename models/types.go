package models

import "time"

// Task status constants
const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskExpired    = "expired"
)

// Session status constants
const (
	SessionInProgress = "in_progress"
	SessionSubmitted  = "submitted"
	SessionCompleted  = "completed"
)

// Verification outcome constants
const (
	VerifyVerified        = "verified"
	VerifyAlreadyVerified = "already_verified"
)

// Request types

type CreateSiteRequest struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	URL           string `json:"url"`
	SearchKeyword string `json:"search_keyword"`
	Instruction   string `json:"instruction"`
	TargetElement string `json:"target_element"`
	Quota         int    `json:"quota"`
	Priority      *int   `json:"priority,omitempty"`
}

// UpdateSiteRequest uses pointers so omitted fields are left untouched.
type UpdateSiteRequest struct {
	Name          *string `json:"name,omitempty"`
	Domain        *string `json:"domain,omitempty"`
	URL           *string `json:"url,omitempty"`
	SearchKeyword *string `json:"search_keyword,omitempty"`
	Instruction   *string `json:"instruction,omitempty"`
	TargetElement *string `json:"target_element,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Quota         *int    `json:"quota,omitempty"`
	Priority      *int    `json:"priority,omitempty"`
}

type CreateSessionRequest struct {
	Fingerprint string `json:"fingerprint"`
	TestKind    string `json:"test_kind"`
}

type SubmitSessionRequest struct {
	Score      int `json:"score"`
	MaxScore   int `json:"max_score"`
	Percentile int `json:"percentile"`
}

type AssignTaskRequest struct {
	Fingerprint string `json:"fingerprint"`
	SessionID   string `json:"session_id"`
}

type StartCountdownRequest struct {
	TaskID      string `json:"task_id"`
	Fingerprint string `json:"fingerprint"`
}

type VerifyCodeRequest struct {
	Fingerprint string `json:"fingerprint"`
	Code        string `json:"code"`
	SessionID   string `json:"session_id"`
}

// Response types

type CreateSiteResponse struct {
	Site      Site   `json:"site"`
	EmbedCode string `json:"embed_code"`
}

type SiteStatsResponse struct {
	TotalVisits    int    `json:"total_visits"`
	TotalCompleted int    `json:"total_completed"`
	CompletionRate string `json:"completion_rate"`
	Summary        string `json:"summary"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type AssignTaskResponse struct {
	TaskID     string     `json:"task_id"`
	Reused     bool       `json:"reused"`
	TargetSite TargetSite `json:"target_site"`
}

// TargetSite is the subset of Site shown to a client after assignment.
// Quota and priority stay server-side.
type TargetSite struct {
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	URL           string `json:"url"`
	SearchKeyword string `json:"search_keyword"`
	Instruction   string `json:"instruction"`
}

type CheckTaskResponse struct {
	HasTask bool    `json:"has_task"`
	TaskID  *string `json:"task_id,omitempty"`
	Status  *string `json:"status,omitempty"`
	Code    *string `json:"code,omitempty"`
}

type StartCountdownResponse struct {
	CountdownSeconds int `json:"countdown_seconds"`
}

type RevealCodeResponse struct {
	Code             string `json:"code,omitempty"`
	TooEarly         bool   `json:"too_early,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
}

type VerifyCodeResponse struct {
	Status   string `json:"status"`
	TestKind string `json:"test_kind"`
}

type SessionResultResponse struct {
	SessionID  string     `json:"session_id"`
	TestKind   string     `json:"test_kind"`
	Score      int        `json:"score"`
	MaxScore   int        `json:"max_score"`
	Percentile int        `json:"percentile"`
	Status     string     `json:"status"`
	Unlocked   bool       `json:"unlocked"`
	StartedAt  time.Time  `json:"started_at"`
	DoneAt     *time.Time `json:"done_at,omitempty"`
}

// Domain types

type Site struct {
	ID             string    `json:"id"`
	SiteKey        string    `json:"site_key"`
	Name           string    `json:"name"`
	Domain         string    `json:"domain"`
	URL            string    `json:"url"`
	SearchKeyword  string    `json:"search_keyword"`
	Instruction    string    `json:"instruction"`
	TargetElement  string    `json:"target_element"`
	IsActive       bool      `json:"is_active"`
	Quota          int       `json:"quota"`
	RemainingQuota int       `json:"remaining_quota"`
	Priority       int       `json:"priority"`
	TotalVisits    int       `json:"total_visits"`
	TotalCompleted int       `json:"total_completed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Eligible reports whether the site may receive new assignments.
func (s Site) Eligible() bool {
	return s.IsActive && (s.Quota == 0 || s.RemainingQuota > 0)
}

type Task struct {
	ID              string     `json:"id"`
	SessionID       string     `json:"session_id"`
	SiteID          string     `json:"site_id"`
	Fingerprint     string     `json:"-"` // Never expose in JSON
	Code            *string    `json:"-"` // Revealed only via the reveal endpoint
	Status          string     `json:"status"`
	CodeGeneratedAt *time.Time `json:"code_generated_at,omitempty"`
	CodeRevealedAt  *time.Time `json:"code_revealed_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
}

type Session struct {
	ID          string     `json:"id"`
	TestKind    string     `json:"test_kind"`
	Fingerprint string     `json:"-"` // Never expose in JSON
	Score       int        `json:"score"`
	MaxScore    int        `json:"max_score"`
	Percentile  int        `json:"percentile"`
	Status      string     `json:"status"`
	Unlocked    bool       `json:"unlocked"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
