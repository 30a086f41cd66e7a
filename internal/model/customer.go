// internal/model/customer.go
package model

import "time"

type Customer struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	Info      string     `db:"info" json:"info"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}
