// README: Dashboard read models over the Supabase tables.
package dashboard

import (
	"errors"
	"time"

	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/types"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Listing is one row of the services table, offered by a Helpa the user owns.
type Listing struct {
	ID       string      `json:"id"`
	HelpaID  string      `json:"helpa_id"`
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Price    types.Money `json:"price"`
	Active   bool        `json:"active"`
}

type Stats struct {
	TotalSpent   types.Money `json:"total_spent"`
	InEscrow     types.Money `json:"in_escrow"`
	Earned       types.Money `json:"earned"`
	Completed    int         `json:"completed"`
	OpenPayments int         `json:"open_payments"`
}

type Overview struct {
	Profile      Profile               `json:"profile"`
	Transactions []payment.Transaction `json:"transactions"`
	Services     []Listing             `json:"services"`
	Stats        Stats                 `json:"stats"`
}
