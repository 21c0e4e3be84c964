package request

// UpdateUserRequest holds the admin-editable fields; nil means unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin driver passenger"`
	IsActive *bool   `json:"is_active,omitempty"`
}
