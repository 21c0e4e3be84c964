package usecase

import (
	"context"
	"strings"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)

	// Authenticate resolves a bearer token to the caller identity
	Authenticate(ctx context.Context, rawToken string) (utils.Identity, string, error)
}

type authService struct {
	repo   *repository.Repository // grouping userRepo & sessionRepo
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		now:    time.Now,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	// Self-registration always yields a passenger; admins assign other roles
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
		Role:         entity.RolePassenger,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.repo.User.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err))
		return nil, err
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid credentials", zap.String("email", req.Email))
		return nil, apperr.Unauthenticated("invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperr.Forbidden("account is deactivated")
	}

	resp, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	token, err := uuid.Parse(sessionToken)
	if err != nil {
		return apperr.Unauthenticated("invalid session")
	}

	if err := s.repo.Session.Revoke(ctx, token); err != nil {
		return err
	}

	s.log.Info("User logged out", zap.String("session", token.String()))
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// Authenticate verifies the JWT, then the backing session and user. The role
// comes from the user row so role changes apply to existing tokens.
func (s *authService) Authenticate(ctx context.Context, rawToken string) (utils.Identity, string, error) {
	claims, err := utils.ParseAccessToken(s.config.JWT.Secret, rawToken)
	if err != nil {
		return utils.Identity{}, "", apperr.Unauthenticated("invalid or expired token")
	}

	// ParseAccessToken already guarantees both are UUIDs
	userID := uuid.MustParse(claims.Subject)
	sessionToken := uuid.MustParse(claims.ID)

	session, err := s.repo.Session.FindValidSession(ctx, sessionToken)
	if err != nil {
		return utils.Identity{}, "", err
	}
	if session == nil || session.UserID != userID {
		return utils.Identity{}, "", apperr.Unauthenticated("invalid or expired session")
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return utils.Identity{}, "", err
	}
	if user == nil || !user.IsActive {
		return utils.Identity{}, "", apperr.Unauthenticated("account is not active")
	}

	return utils.Identity{UserID: user.ID, Role: string(user.Role)}, session.Token.String(), nil
}

func (s *authService) issueToken(ctx context.Context, user *entity.User) (*response.AuthResponse, error) {
	ttl := time.Duration(s.config.JWT.ExpiryHours) * time.Hour
	now := s.now()

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		ExpiresAt: now.Add(ttl),
	}

	token, err := utils.NewAccessToken(s.config.JWT.Secret, user.ID, session.Token, string(user.Role), ttl)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}
	session.ExpiresAt = token.ExpiresAt

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	resp := response.AuthToResponse(user, token.Token, token.ExpiresAt)
	return &resp, nil
}
