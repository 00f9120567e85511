package entity

import "time"

// Customer representa un cliente. El núcleo de pedidos solo verifica su existencia.
type Customer struct {
	ID        string
	Code      string // CUS-000001; generado por el numerador
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
