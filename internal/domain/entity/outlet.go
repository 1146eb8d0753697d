package entity

import "time"

// Outlet representa un punto de venta físico (tienda o sucursal).
type Outlet struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
