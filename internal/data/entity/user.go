package entity

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleDriver    UserRole = "driver"
	RolePassenger UserRole = "passenger"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RolePassenger:
		return true
	}
	return false
}

type User struct {
	Base
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}
