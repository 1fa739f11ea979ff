package dto

import "github.com/spec-kit/support-desk/internal/domain"

// UserSummary is the public identity attached to tickets and responses.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// NewUserSummary maps a domain summary.
func NewUserSummary(u domain.UserSummary) UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func optionalUser(u *domain.UserSummary) *UserSummary {
	if u == nil {
		return nil
	}
	summary := NewUserSummary(*u)
	return &summary
}
