package customers

import "time"

// Customer is a customer row keyed by the directory's customer number.
type Customer struct {
	CustomerNumber string    `json:"customer_number"`
	Name           string    `json:"name"`
	Country        string    `json:"country"`
	City           string    `json:"city"`
	CreatedAt      time.Time `json:"created_at"`
}
