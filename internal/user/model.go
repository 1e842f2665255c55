package user

type Role string

const (
	RoleUnset    Role = ""
	RolePending  Role = "pending"
	RoleApproved Role = "approved"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUnset, RolePending, RoleApproved, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Role  Role   `json:"role"`
}

type RegisterInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Role  Role   `json:"role" validate:"omitempty,oneof=pending approved admin"`
}

// UpdateRoleInput accepts the legacy "newStatus" key as well as "role".
type UpdateRoleInput struct {
	NewStatus *Role `json:"newStatus"`
	Role      *Role `json:"role"`
}

func (in UpdateRoleInput) Value() (Role, bool) {
	if in.NewStatus != nil {
		return *in.NewStatus, true
	}
	if in.Role != nil {
		return *in.Role, true
	}
	return "", false
}
