package entity

import "time"

// Client titular de pólizas (persona física o jurídica).
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Document  string
	BirthDate *time.Time
	Address   string
	City      string
	State     string
	LeadID    string // lead de origen, si vino del funil
	CreatedAt time.Time
	UpdatedAt time.Time
}
