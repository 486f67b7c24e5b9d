package domain

import "time"

// Profile is the public face of a user; one per user.
type Profile struct {
	ProfileID string    `json:"id" dynamodbav:"profile_id"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	FirstName string    `json:"firstName" dynamodbav:"first_name"`
	LastName  string    `json:"lastName" dynamodbav:"last_name"`
	Image     string    `json:"image" dynamodbav:"image"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
