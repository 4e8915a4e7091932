package admin

import "time"

// ContextUserKey is the gin context key holding the signed-in *User.
const ContextUserKey = "adminUser"

// User is an administrator account.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Session ties a browser cookie to a signed-in user.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Credentials is the API request payload for login and registration.
type Credentials struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=128"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned after login or registration.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

func toResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
