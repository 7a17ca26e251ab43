package dto

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration (invite-gated)
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Password   string `json:"password" binding:"required,min=8"`
	Email      string `json:"email" binding:"required,email"`
	InviteCode string `json:"invite_code" binding:"required"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// RegisterResponse: response payload after successful registration
type RegisterResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

// UserResponse: public view of a user profile
type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	AvatarPath *string `json:"avatar_path,omitempty"`
}
