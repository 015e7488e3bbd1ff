package auth

import (
	"github.com/workstack/workforce-management/internal/workflow"
)

// RelationsFor computes every relation the caller holds toward a record
// owner. ownerManagerID is nil for root-level employees, which unlocks the
// explicit self-approval path.
func RelationsFor(actor Identity, ownerID int64, ownerManagerID *int64) []workflow.Relation {
	var relations []workflow.Relation

	if actor.EmployeeID == ownerID {
		relations = append(relations, workflow.RelationOwner)
		if ownerManagerID == nil {
			relations = append(relations, workflow.RelationRootOwner)
		}
	}
	if ownerManagerID != nil && *ownerManagerID == actor.EmployeeID {
		relations = append(relations, workflow.RelationManager)
	}
	if actor.Role == RoleHR {
		relations = append(relations, workflow.RelationHR)
	}

	return relations
}

// CanViewRecord reports whether the caller may read a record owned by
// ownerID. Owners, their direct manager and HR qualify.
func CanViewRecord(actor Identity, ownerID int64, ownerManagerID *int64) bool {
	for _, r := range RelationsFor(actor, ownerID, ownerManagerID) {
		switch r {
		case workflow.RelationOwner, workflow.RelationManager, workflow.RelationHR:
			return true
		}
	}
	return false
}
