package auth

// Resolver computes the effective permission set for a user by aggregating
// permissions from all active role assignments. Resolution is pure given the
// store contents and is recomputed per request; deactivating an assignment
// takes effect on the next resolve without any cache to invalidate.
type Resolver struct {
	roles RoleRepository
}

func NewResolver(roles RoleRepository) *Resolver {
	return &Resolver{roles: roles}
}

// Resolve returns the deduplicated union of the permissions of every active
// role assigned to the user. Zero active roles yields an empty set, not an
// error.
func (r *Resolver) Resolve(userID int64) (PermissionSet, error) {
	assignments, err := r.roles.ActiveRoleAssignments(userID)
	if err != nil {
		return nil, err
	}

	set := NewPermissionSet()
	for _, assignment := range assignments {
		perms, err := r.roles.RolePermissions(assignment.RoleID)
		if err != nil {
			return nil, err
		}
		set.Add(perms...)
	}

	return set, nil
}
