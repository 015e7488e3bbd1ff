package workflow

import (
	"fmt"

	"github.com/workstack/workforce-management/internal"
)

// Status is the lifecycle state shared by timesheet entries, expense claims
// and leave requests.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Editable reports whether the owner may still change the record's content.
// Resubmission after rejection is the only path back to an editable state.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Action names an operation against the state machine.
type Action string

const (
	ActionSubmit      Action = "submit"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionAutoApprove Action = "auto_approve"
	ActionDelete      Action = "delete"
)

// Relation describes how the acting user relates to the record owner.
// A caller may hold several relations at once (e.g. HR approving their
// own report's record).
type Relation string

const (
	RelationOwner   Relation = "owner"
	RelationManager Relation = "manager"   // direct manager of the owner
	RelationHR      Relation = "hr"        // HR role, any owner in tenant
	RelationRootOwner Relation = "root_owner" // owner without a manager, self-approving
)

type rule struct {
	from        []Status
	to          Status
	relations   []Relation
	needsReason bool
}

// transitions is the full (action, current state, actor relation) table.
// APPROVED is terminal: no rule leads out of it.
var transitions = map[Action]rule{
	ActionSubmit:      {from: []Status{StatusDraft, StatusRejected}, to: StatusSubmitted, relations: []Relation{RelationOwner}},
	ActionDelete:      {from: []Status{StatusDraft}, relations: []Relation{RelationOwner}},
	ActionApprove:     {from: []Status{StatusSubmitted}, to: StatusApproved, relations: []Relation{RelationManager, RelationHR}},
	ActionReject:      {from: []Status{StatusSubmitted}, to: StatusRejected, relations: []Relation{RelationManager, RelationHR}, needsReason: true},
	ActionAutoApprove: {from: []Status{StatusSubmitted}, to: StatusApproved, relations: []Relation{RelationRootOwner}},
}

// Authorize checks an action against the transition table and returns the
// resulting status. The error is already shaped for the HTTP layer: wrong
// state is a conflict, wrong actor is forbidden, missing reason is a
// validation failure.
func Authorize(action Action, current Status, relations []Relation, reason string) (Status, error) {
	r, ok := transitions[action]
	if !ok {
		return "", internal.NewInternalError(fmt.Sprintf("unknown workflow action %q", action), nil)
	}

	allowed := false
	for _, need := range r.relations {
		for _, have := range relations {
			if need == have {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		if containsRelation(r.relations, RelationOwner) {
			return "", internal.ErrNotRecordOwner
		}
		return "", internal.ErrNotInChain
	}

	inFrom := false
	for _, s := range r.from {
		if s == current {
			inFrom = true
			break
		}
	}
	if !inFrom {
		return "", internal.NewConflictError(
			fmt.Sprintf("cannot %s a record in status %s", action, current),
			internal.ErrCodeInvalidTransition,
		)
	}

	if r.needsReason && reason == "" {
		return "", internal.NewValidationError("a reason is required when rejecting", internal.ErrCodeReasonRequired)
	}

	return r.to, nil
}

func containsRelation(rs []Relation, want Relation) bool {
	for _, r := range rs {
		if r == want {
			return true
		}
	}
	return false
}

// Outcome reports the result of one entry within a bulk operation. Bulk
// callers always receive the full outcome list; one failed entry never
// aborts the rest.
type Outcome struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func SuccessOutcome(id int64) Outcome {
	return Outcome{ID: id, Success: true}
}

func FailureOutcome(id int64, err error) Outcome {
	return Outcome{ID: id, Success: false, Error: err.Error()}
}
