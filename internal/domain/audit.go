package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a manager action on the protocol.
type AuditLog struct {
	ID           string
	Actor        string // address that performed the action
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionWithdrawFees          AuditAction = "protocol.withdraw_fees"
	AuditActionUpdateFeeRate         AuditAction = "protocol.update_fee_rate"
	AuditActionUpdateImprovementRate AuditAction = "protocol.update_improvement_rate"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a value to a JSON map for audit rows and event payloads.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Actor     string
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Matches reports whether log passes every non-empty filter field.
func (f AuditFilter) Matches(log *AuditLog) bool {
	if f.Actor != "" && f.Actor != log.Actor {
		return false
	}
	if f.Action != "" && f.Action != log.Action {
		return false
	}
	if f.StartDate != nil && log.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && log.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}
