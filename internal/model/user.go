package model

import "time"

// User represents an attendee account.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSignupRequest is the payload for creating a user account.
type UserSignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=72"`
	Age      int    `json:"age" binding:"gte=0,lte=150"`
}

// UserProfile is returned by the user profile endpoint.
type UserProfile struct {
	User
	Events []Event `json:"events"`
}

// SigninRequest is the payload for authenticating either principal kind.
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}
