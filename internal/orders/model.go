package orders

import "time"

// Order is a sales order row as read by the scoped listing. The campaign
// id, customer number and country triple is what the authorization engine
// scopes on.
type Order struct {
	ID             int64     `json:"id"`
	CampaignID     int64     `json:"campaign_id"`
	CustomerNumber string    `json:"customer_number"`
	CustomerName   string    `json:"customer_name"`
	Country        string    `json:"country"`
	Status         string    `json:"status"`
	TotalAmount    float64   `json:"total_amount"`
	CreatedAt      time.Time `json:"created_at"`
}
