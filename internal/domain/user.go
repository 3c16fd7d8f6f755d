package domain

// UserProfile is the account metadata kept alongside the auth record.
// Written once at registration, read-mostly afterwards.
type UserProfile struct {
	ID        string
	FullName  string
	Email     string
	CreatedAt string // RFC 3339
	Role      string
}

const RoleUser = "user"
