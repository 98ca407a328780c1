package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessRegister = "user registered successfully"
	MessageSuccessLogin    = "login successful"
	MessageSuccessGetMe    = "user retrieved successfully"
	MessageFailedRegister  = "failed to register user"
	MessageFailedLogin     = "failed to login"
	MessageFailedGetMe     = "failed to retrieve user"

	MessageSuccessGetActivity = "activity retrieved successfully"
	MessageFailedGetActivity  = "failed to retrieve activity"

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrCredentialsInvalid = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("role must be donor or rescuer")
)

type (
	RegisterRequest struct {
		Username           string   `json:"username" validate:"required,min=3,max=50"`
		Email              string   `json:"email" validate:"required,email"`
		Password           string   `json:"password" validate:"required,min=8"`
		Role               string   `json:"role" validate:"required,oneof=donor rescuer"`
		OrganizationName   string   `json:"organization_name" validate:"required"`
		RegistrationNumber string   `json:"registration_number" validate:"required"`
		BusinessType       string   `json:"business_type" validate:"required"`
		Latitude           *float64 `json:"lat" validate:"omitempty,latitude"`
		Longitude          *float64 `json:"lng" validate:"omitempty,longitude"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	UserResponse struct {
		ID                 string    `json:"id"`
		Username           string    `json:"username"`
		Email              string    `json:"email"`
		Role               string    `json:"role"`
		OrganizationName   string    `json:"organization_name"`
		RegistrationNumber string    `json:"registration_number"`
		BusinessType       string    `json:"business_type"`
		IsVerified         bool      `json:"is_verified"`
		Latitude           *float64  `json:"lat,omitempty"`
		Longitude          *float64  `json:"lng,omitempty"`
		CreatedAt          time.Time `json:"created_at"`
	}
)
