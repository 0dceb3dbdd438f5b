package member

import (
	"context"
	"testing"
	"time"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Service, *db.Queries, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/member",
		DbSchema: db.Schema,
	})
	return NewService(res.DB), db.New(res.DB), cleanup
}

func seedUser(t testing.TB, qry *db.Queries, studentID, name string) {
	err := qry.CreateUser(context.Background(), db.CreateUserParams{
		Studentid: studentID,
		Password:  "hash",
		Name:      name,
		Major:     "컴퓨터학부",
		Role:      db.RoleGuest,
		Createdat: time.Now().Unix(),
	})
	require.NoError(t, err)
}

func TestListHidesPasswordHashes(t *testing.T) {
	service, qry, cleanup := setup(t)
	defer cleanup()

	seedUser(t, qry, "21012345", "김철수")
	seedUser(t, qry, "21054321", "박영희")

	profiles, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.Equal(t, "김철수", profiles[0].Name)
	require.Equal(t, db.RoleGuest, profiles[0].Role)
}

func TestUpdateProfile(t *testing.T) {
	service, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	seedUser(t, qry, "21012345", "김철수")

	profile, err := service.UpdateProfile(ctx, "21012345", UpdateProfileParams{
		Bio:   "백엔드를 좋아합니다",
		Team:  "server",
		Track: "backend",
	})
	require.NoError(t, err)
	require.Equal(t, "server", profile.Team)
	require.Equal(t, "backend", profile.Track)

	// name and major stay portal-sourced
	require.Equal(t, "김철수", profile.Name)
	require.Equal(t, "컴퓨터학부", profile.Major)
}

func TestSetRole(t *testing.T) {
	service, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	seedUser(t, qry, "21012345", "김철수")

	profile, err := service.SetRole(ctx, "21012345", db.RoleMember)
	require.NoError(t, err)
	require.Equal(t, db.RoleMember, profile.Role)

	_, err = service.SetRole(ctx, "21012345", "SUPERUSER")
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.SetRole(ctx, "00000000", db.RoleAdmin)
	require.ErrorIs(t, err, ErrNoSuchMember)
}
