package dto

// LoginRequest defines the admin login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued admin bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
