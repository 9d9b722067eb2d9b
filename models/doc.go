// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateSiteRequest / UpdateSiteRequest: site registry admin
  - CreateSessionRequest / SubmitSessionRequest: assessment sessions
  - AssignTaskRequest: fingerprint + session_id
  - StartCountdownRequest: task_id + fingerprint
  - VerifyCodeRequest: fingerprint + code + session_id

# Response Types

Types for JSON responses:

  - AssignTaskResponse: task_id, reused, target_site
  - CheckTaskResponse: has_task, task_id, status, code
  - StartCountdownResponse: countdown_seconds
  - RevealCodeResponse: code | too_early + remaining_seconds
  - VerifyCodeResponse: status, test_kind
  - SessionResultResponse: unlock-gated score payload
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Site: destination with selection weight, quota, and counters
  - Task: one-time unit of work binding a device to a site and a code
  - Session: completed assessment awaiting unlock

# Constants

Task status values:

	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskExpired    = "expired"

Session status values:

	SessionInProgress = "in_progress"
	SessionSubmitted  = "submitted"
	SessionCompleted  = "completed"

Verification outcomes:

	VerifyVerified        = "verified"
	VerifyAlreadyVerified = "already_verified"
*/
package models
