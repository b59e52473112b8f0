// Package model defines domain entities for the application.
package model

import "time"

// Defaults applied to users created from identity provider events.
const (
	DefaultPlanID        = 1
	DefaultCreditBalance = 10
)

// User is a local profile mirrored from the identity provider.
type User struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerk_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Photo         string    `json:"photo"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	PlanID        int       `json:"plan_id"`
	CreditBalance int       `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserProfile holds the identity provider fields that user.updated events
// overwrite.
type UserProfile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Photo     string `json:"photo"`
}
