package models

import "github.com/google/uuid"

// User is an operator account, looked up by email. Password holds an
// argon2id PHC string and is never serialized in API responses.
type User struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Email    string     `json:"email" db:"email"`
	Password string     `json:"-" db:"password"`
	Roles    StringList `json:"roles" db:"roles"`
	Active   bool       `json:"active" db:"active"`
	Created  string     `json:"created" db:"created"`
}
