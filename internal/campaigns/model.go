package campaigns

import "time"

// Campaign statuses.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Campaign is a marketing campaign row as read by the scoped listing.
type Campaign struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Country   string    `json:"country"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Assignee is one collaborator on a campaign.
type Assignee struct {
	CampaignID     int64  `json:"campaign_id"`
	UserID         int64  `json:"user_id"`
	AssignmentRole string `json:"assignment_role"`
}
