package model

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse is the auth service reply. Only Token is guaranteed.
type LoginResponse struct {
	Token   string     `json:"token"`
	UserID  FlexString `json:"userId"`
	RoleID  FlexString `json:"roleId"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Message string     `json:"message"`
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}
