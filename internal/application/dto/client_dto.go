package dto

import "time"

// CreateClientRequest entrada para crear un cliente (titular de póliza).
type CreateClientRequest struct {
	Name      string     `json:"name" validate:"required,min=2,max=200"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Phone     string     `json:"phone" validate:"omitempty,max=30"`
	Document  string     `json:"document" validate:"required,max=30"`
	BirthDate *time.Time `json:"birth_date"`
	Address   string     `json:"address" validate:"omitempty,max=300"`
	City      string     `json:"city" validate:"omitempty,max=100"`
	State     string     `json:"state" validate:"omitempty,max=100"`
	LeadID    string     `json:"lead_id" validate:"omitempty,uuid"`
}

// UpdateClientRequest entrada para actualizar un cliente.
type UpdateClientRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=2,max=200"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=30"`
	BirthDate *time.Time `json:"birth_date"`
	Address   *string    `json:"address" validate:"omitempty,max=300"`
	City      *string    `json:"city" validate:"omitempty,max=100"`
	State     *string    `json:"state" validate:"omitempty,max=100"`
}

// ClientListQuery filtros del listado de clientes.
type ClientListQuery struct {
	Search string `query:"search"`
	State  string `query:"state"`
	PageRequest
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Document  string     `json:"document"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Address   string     `json:"address"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	LeadID    string     `json:"lead_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
