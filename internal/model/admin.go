package model

import "time"

// Admin represents an event organizer account.
type Admin struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminSignupRequest is the payload for creating an admin account.
type AdminSignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// AdminProfile is returned by the admin profile endpoint.
type AdminProfile struct {
	Admin
	Events []Event `json:"events"`
}
