package domain

// User is the session record. It exists only while a session is active.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// Account is the devserver-side view of a user, including its credential hash.
type Account struct {
	User
	PasswordHash string
}
