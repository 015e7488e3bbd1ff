package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workstack/workforce-management/internal/workflow"
)

func managerID(id int64) *int64 { return &id }

func TestRelationsFor(t *testing.T) {
	tests := []struct {
		name           string
		actor          Identity
		ownerID        int64
		ownerManagerID *int64
		want           []workflow.Relation
	}{
		{
			name:    "owner with manager",
			actor:   Identity{EmployeeID: 1, Role: RoleEmployee},
			ownerID: 1, ownerManagerID: managerID(9),
			want: []workflow.Relation{workflow.RelationOwner},
		},
		{
			name:    "root-level owner",
			actor:   Identity{EmployeeID: 1, Role: RoleEmployee},
			ownerID: 1, ownerManagerID: nil,
			want: []workflow.Relation{workflow.RelationOwner, workflow.RelationRootOwner},
		},
		{
			name:    "direct manager",
			actor:   Identity{EmployeeID: 9, Role: RoleManager},
			ownerID: 1, ownerManagerID: managerID(9),
			want: []workflow.Relation{workflow.RelationManager},
		},
		{
			name:    "unrelated manager",
			actor:   Identity{EmployeeID: 8, Role: RoleManager},
			ownerID: 1, ownerManagerID: managerID(9),
			want: nil,
		},
		{
			name:    "hr over any owner",
			actor:   Identity{EmployeeID: 5, Role: RoleHR},
			ownerID: 1, ownerManagerID: managerID(9),
			want: []workflow.Relation{workflow.RelationHR},
		},
		{
			name:    "hr owning their own record",
			actor:   Identity{EmployeeID: 5, Role: RoleHR},
			ownerID: 5, ownerManagerID: managerID(9),
			want: []workflow.Relation{workflow.RelationOwner, workflow.RelationHR},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelationsFor(tt.actor, tt.ownerID, tt.ownerManagerID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanViewRecord(t *testing.T) {
	assert.True(t, CanViewRecord(Identity{EmployeeID: 1}, 1, managerID(9)))
	assert.True(t, CanViewRecord(Identity{EmployeeID: 9}, 1, managerID(9)))
	assert.True(t, CanViewRecord(Identity{EmployeeID: 4, Role: RoleHR}, 1, managerID(9)))
	assert.False(t, CanViewRecord(Identity{EmployeeID: 3}, 1, managerID(9)))
}
