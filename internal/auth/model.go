package auth

// RegisterRequest is the registration form
type RegisterRequest struct {
	Username string `validate:"required,max=80"`
	Email    string `validate:"required,email,max=120"`
	Password string `validate:"required"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}
