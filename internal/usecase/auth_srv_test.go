package usecase

import (
	"context"
	"testing"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/dto/request"
)

func TestRegisterLoginAuthenticateLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Auth.Register(ctx, &request.RegisterRequest{
		Name:     "Reza",
		Email:    "Reza@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Role != entity.RolePassenger || reg.Email != "reza@example.com" {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	if _, err := f.svc.Auth.Register(ctx, &request.RegisterRequest{Name: "Reza", Email: "reza@example.com", Password: "secret123"}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "reza@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, session, err := f.svc.Auth.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID.String() != login.UserID || id.Role != "passenger" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	if err := f.svc.Auth.Logout(ctx, session); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := f.svc.Auth.Authenticate(ctx, login.Token); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("revoked token: expected unauthenticated, got %v", err)
	}

	// the registration token is a separate session and still works
	if _, _, err := f.svc.Auth.Authenticate(ctx, reg.Token); err != nil {
		t.Fatalf("registration token: %v", err)
	}
}

func TestLoginRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "ali@example.com", Password: "wrong-password"}); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("wrong password: expected unauthenticated, got %v", err)
	}
	if _, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "ghost@example.com", Password: "secret123"}); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("unknown email: expected unauthenticated, got %v", err)
	}
	if _, _, err := f.svc.Auth.Authenticate(ctx, "not-a-jwt"); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("garbage token: expected unauthenticated, got %v", err)
	}
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "ali@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	inactive := false
	if _, err := f.svc.User.UpdateUser(ctx, f.ali.ID.String(), &request.UpdateUserRequest{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := f.svc.Auth.Authenticate(ctx, login.Token); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("deactivated token: expected unauthenticated, got %v", err)
	}
	if _, err := f.svc.Auth.Login(ctx, &request.LoginRequest{Email: "ali@example.com", Password: "secret123"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("deactivated login: expected forbidden, got %v", err)
	}
}

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := "driver"
	updated, err := f.svc.User.UpdateUser(ctx, f.sara.ID.String(), &request.UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if updated.Role != entity.RoleDriver {
		t.Fatalf("role = %s, want driver", updated.Role)
	}

	drivers, err := f.svc.User.GetDrivers(ctx)
	if err != nil || len(drivers) != 2 {
		t.Fatalf("drivers: %v, %d", err, len(drivers))
	}

	if err := f.svc.User.DeleteUser(ctx, f.sara.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.User.GetUserByID(ctx, f.sara.ID.String()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("deleted user: expected not found, got %v", err)
	}

	page, err := f.svc.User.GetAllUsers(ctx, &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil || page.Pagination.Total != 3 {
		t.Fatalf("list users: %v, %+v", err, page)
	}
}
