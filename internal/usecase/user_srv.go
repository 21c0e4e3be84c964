package usecase

import (
	"context"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"

	"go.uber.org/zap"
)

type UserService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetDrivers(ctx context.Context) ([]response.UserResponse, error)
	GetUserByID(ctx context.Context, userID string) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, userID string) error
}

type userService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		repo: repo,
		log:  log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	// Set defaults
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}
	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, response.UserToResponse(u))
	}
	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) GetDrivers(ctx context.Context) ([]response.UserResponse, error) {
	drivers, err := us.repo.User.FindDrivers(ctx)
	if err != nil {
		return nil, err
	}

	data := make([]response.UserResponse, 0, len(drivers))
	for _, d := range drivers {
		data = append(data, response.UserToResponse(d))
	}
	return data, nil
}

func (us *userService) GetUserByID(ctx context.Context, userID string) (*response.UserResponse, error) {
	id, err := parseID("id", userID)
	if err != nil {
		return nil, err
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, userID string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	id, err := parseID("id", userID)
	if err != nil {
		return nil, err
	}

	user, err := us.repo.User.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		if !role.Valid() {
			return nil, apperr.Validation(map[string]string{"role": "Unknown role"}, "invalid role %q", *req.Role)
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := us.repo.User.Update(ctx, user); err != nil {
		return nil, err
	}

	// A deactivated account loses its open sessions
	if !user.IsActive {
		if err := us.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
			us.log.Warn("Failed to revoke sessions of deactivated user", zap.Error(err), zap.String("user_id", userID))
		}
	}

	us.log.Info("User updated", zap.String("user_id", userID), zap.String("role", string(user.Role)))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, userID string) error {
	id, err := parseID("id", userID)
	if err != nil {
		return err
	}

	if err := us.repo.User.Delete(ctx, id); err != nil {
		return err
	}
	if err := us.repo.Session.RevokeAllUserSessions(ctx, id); err != nil {
		us.log.Warn("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("user_id", userID))
	}

	us.log.Info("User deleted", zap.String("user_id", userID))
	return nil
}
