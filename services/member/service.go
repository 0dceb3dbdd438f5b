package member

import (
	"context"
	"database/sql"
	"fmt"

	"lionclub-backend/internal/db"

	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var ErrNoSuchMember = fmt.Errorf("no such member")
var ErrInvalidRole = fmt.Errorf("invalid role")

type Service struct {
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{qry: db.New(database)}
}

// Profile is the public slice of a user row. password hashes never
// leave this package.
type Profile struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Major     string `json:"major"`
	Bio       string `json:"bio"`
	Team      string `json:"team"`
	Track     string `json:"track"`
	Role      string `json:"role"`
}

func profileFromUser(user db.User) Profile {
	return Profile{
		StudentID: user.Studentid,
		Name:      user.Name,
		Major:     user.Major,
		Bio:       user.Bio,
		Team:      user.Team,
		Track:     user.Track,
		Role:      user.Role,
	}
}

func (s Service) List(ctx context.Context) ([]Profile, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	users, err := s.qry.ListUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list users")
		return nil, err
	}

	profiles := make([]Profile, len(users))
	for i, user := range users {
		profiles[i] = profileFromUser(user)
	}
	return profiles, nil
}

func (s Service) Get(ctx context.Context, studentID string) (Profile, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	user, err := s.qry.GetUser(ctx, studentID)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNoSuchMember
	}
	if err != nil {
		span.RecordError(err)
		return Profile{}, err
	}
	return profileFromUser(user), nil
}

type UpdateProfileParams struct {
	Bio   string `json:"bio"`
	Team  string `json:"team"`
	Track string `json:"track"`
}

// UpdateProfile edits the self-service fields of the caller's own row.
func (s Service) UpdateProfile(ctx context.Context, studentID string, params UpdateProfileParams) (Profile, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	err := s.qry.UpdateUserProfile(ctx, db.UpdateUserProfileParams{
		Bio:       params.Bio,
		Team:      params.Team,
		Track:     params.Track,
		Studentid: studentID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update profile")
		return Profile{}, err
	}
	return s.Get(ctx, studentID)
}

func validRole(role string) bool {
	switch role {
	case db.RoleGuest, db.RoleMember, db.RoleAdmin:
		return true
	}
	return false
}

// SetRole moves a member between the guest, member and admin roles.
// only admins reach this through the http surface.
func (s Service) SetRole(ctx context.Context, studentID, role string) (Profile, error) {
	ctx, span := tracer.Start(ctx, "SetRole")
	defer span.End()

	if !validRole(role) {
		span.SetStatus(codes.Error, "rejected unknown role")
		return Profile{}, ErrInvalidRole
	}
	if _, err := s.Get(ctx, studentID); err != nil {
		return Profile{}, err
	}

	err := s.qry.UpdateUserRole(ctx, db.UpdateUserRoleParams{
		Role:      role,
		Studentid: studentID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update role")
		return Profile{}, err
	}
	return s.Get(ctx, studentID)
}
