package user

import (
	"context"

	"github.com/b1gw1z/frn-backend/domain"
	"github.com/b1gw1z/frn-backend/entities"
	"github.com/b1gw1z/frn-backend/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (*domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		autoVerify     bool
	}
)

// NewUserService builds the user service. autoVerify marks new accounts as
// verified at registration; it is meant for deployments without an operator
// approval flow, since unverified users can neither post nor claim donations.
func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, autoVerify bool) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		autoVerify:     autoVerify,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserResponse, error) {
	exists, err := s.userRepository.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	if req.Role != domain.RoleDonor && req.Role != domain.RoleRescuer {
		return nil, domain.ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:                 uuid.New(),
		Username:           req.Username,
		Email:              req.Email,
		Password:           string(hashed),
		Role:               req.Role,
		OrganizationName:   req.OrganizationName,
		RegistrationNumber: req.RegistrationNumber,
		BusinessType:       req.BusinessType,
		IsVerified:         s.autoVerify,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrCredentialsInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)

	return &domain.LoginResponse{
		Token: token,
		Role:  user.Role,
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(user *entities.User) *domain.UserResponse {
	return &domain.UserResponse{
		ID:                 user.ID.String(),
		Username:           user.Username,
		Email:              user.Email,
		Role:               user.Role,
		OrganizationName:   user.OrganizationName,
		RegistrationNumber: user.RegistrationNumber,
		BusinessType:       user.BusinessType,
		IsVerified:         user.IsVerified,
		Latitude:           user.Latitude,
		Longitude:          user.Longitude,
		CreatedAt:          user.CreatedAt,
	}
}
