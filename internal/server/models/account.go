package models

// Account is a durable credential record. Username is stored normalised
// (trimmed, lowercase) and never changes once created.
type Account struct {
	Username string
	Password string
	Email    string
}
