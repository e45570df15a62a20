package domain

import "time"

// AuthToken es la llave opaca durable para autenticacion estatica.
// Una sola por usuario; se crea en el primer login y se borra en logout.
type AuthToken struct {
	Key       string    `json:"token"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
