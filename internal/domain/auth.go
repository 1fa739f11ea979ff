package domain

// Caller is the authenticated identity making a request.
type Caller struct {
	ID        string
	Role      Role
	FirstName string
	LastName  string
	Email     string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// FullName joins first and last name.
func (c Caller) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// CallerFromUser builds a caller from a freshly loaded user record.
func CallerFromUser(u *User) Caller {
	return Caller{
		ID:        u.ID,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
