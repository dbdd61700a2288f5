package auth

import (
	"encoding/json"
	"sort"

	"github.com/prasetyadi/hr-platform/internal"
)

// Permission is an atomic capability granted to roles and checked by the
// access guard. The set is closed: externally supplied names must go through
// ParsePermission before they are persisted or checked.
type Permission string

const (
	PermissionEmployeeRead   Permission = "employee_read"
	PermissionEmployeeCreate Permission = "employee_create"
	PermissionEmployeeUpdate Permission = "employee_update"
	PermissionEmployeeDelete Permission = "employee_delete"

	PermissionLeaveRequestCreate Permission = "leave_request_create"
	PermissionLeaveRequestRead   Permission = "leave_request_read"
	PermissionLeaveRequestUpdate Permission = "leave_request_update"
	PermissionLeaveRequestDelete Permission = "leave_request_delete"

	PermissionLeaveTypeCreate Permission = "leave_type_create"
	PermissionLeaveTypeRead   Permission = "leave_type_read"
	PermissionLeaveTypeUpdate Permission = "leave_type_update"
	PermissionLeaveTypeDelete Permission = "leave_type_delete"

	PermissionLeaveBalanceCreate Permission = "leave_balance_create"
	PermissionLeaveBalanceRead   Permission = "leave_balance_read"
	PermissionLeaveReportRead    Permission = "leave_report_read"

	PermissionUserCreate Permission = "user_create"
	PermissionUserRead   Permission = "user_read"
	PermissionUserUpdate Permission = "user_update"
	PermissionUserDelete Permission = "user_delete"

	PermissionRoleCreate Permission = "role_create"
	PermissionRoleRead   Permission = "role_read"
	PermissionRoleUpdate Permission = "role_update"
	PermissionRoleDelete Permission = "role_delete"

	PermissionPermissionRead   Permission = "permission_read"
	PermissionPermissionUpdate Permission = "permission_update"

	PermissionAuditLogRead Permission = "audit_log_read"
)

// AllPermissions lists every member of the enumeration, in declaration order.
var AllPermissions = []Permission{
	PermissionEmployeeRead, PermissionEmployeeCreate, PermissionEmployeeUpdate, PermissionEmployeeDelete,
	PermissionLeaveRequestCreate, PermissionLeaveRequestRead, PermissionLeaveRequestUpdate, PermissionLeaveRequestDelete,
	PermissionLeaveTypeCreate, PermissionLeaveTypeRead, PermissionLeaveTypeUpdate, PermissionLeaveTypeDelete,
	PermissionLeaveBalanceCreate, PermissionLeaveBalanceRead, PermissionLeaveReportRead,
	PermissionUserCreate, PermissionUserRead, PermissionUserUpdate, PermissionUserDelete,
	PermissionRoleCreate, PermissionRoleRead, PermissionRoleUpdate, PermissionRoleDelete,
	PermissionPermissionRead, PermissionPermissionUpdate,
	PermissionAuditLogRead,
}

var validPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = struct{}{}
	}
	return m
}()

func (p Permission) Valid() bool {
	_, ok := validPermissions[p]
	return ok
}

// ParsePermission validates an externally supplied permission name against the
// enumeration, failing fast on unknown values instead of persisting them.
func ParsePermission(name string) (Permission, error) {
	p := Permission(name)
	if !p.Valid() {
		return "", internal.NewValidationError("unknown permission: "+name, internal.ErrCodeUnknownPermission)
	}
	return p, nil
}

// PermissionSet is an explicit set with union semantics; membership checks are
// O(1) and duplicates collapse on insert.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	s.Add(perms...)
	return s
}

func (s PermissionSet) Add(perms ...Permission) {
	for _, p := range perms {
		s[p] = struct{}{}
	}
}

func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	merged := make(PermissionSet, len(s)+len(other))
	for p := range s {
		merged[p] = struct{}{}
	}
	for p := range other {
		merged[p] = struct{}{}
	}
	return merged
}

func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

func (s PermissionSet) ContainsAll(required ...Permission) bool {
	for _, p := range required {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

func (s PermissionSet) ContainsAny(required ...Permission) bool {
	for _, p := range required {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

func (s PermissionSet) Len() int {
	return len(s)
}

// Slice returns the members sorted by name, for stable JSON output and logs.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var names []Permission
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewPermissionSet(names...)
	return nil
}
