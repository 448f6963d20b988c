package domain

import "time"

// PartnerAccount holds the portal credentials provisioned when a registration
// is approved. At most one row exists per registration.
type PartnerAccount struct {
	ID             int64     `json:"id"`
	RegistrationID string    `json:"registration_id"`
	LoginEmail     string    `json:"login_email"`
	APIKey         string    `json:"api_key"`
	PasswordHash   string    `json:"-"`
	CreatedOn      time.Time `json:"created_on"`
}
