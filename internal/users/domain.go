package users

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/authz"
)

// User represents a user account. Field-force users (reps and their
// managers) carry the directory keys used for customer scoping.
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      authz.Role
	RepID     string
	Country   string
	ManagerID *int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal converts the account into the immutable actor evaluated by the
// authorization engine.
func (u User) Principal() authz.Principal {
	return authz.Principal{
		ID:      u.ID,
		Role:    u.Role,
		RepID:   u.RepID,
		Country: u.Country,
	}
}
