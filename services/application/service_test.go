package application

import (
	"context"
	"testing"
	"time"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Service, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/application",
		DbSchema: db.Schema,
	})

	err := db.New(res.DB).CreateUser(context.Background(), db.CreateUserParams{
		Studentid: "21012345",
		Password:  "hash",
		Name:      "김철수",
		Major:     "컴퓨터학부",
		Role:      db.RoleGuest,
		Createdat: time.Now().Unix(),
	})
	require.NoError(t, err)

	return NewService(res.DB), cleanup
}

func TestSubmitAndResubmit(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	app, err := service.Submit(ctx, "21012345", SubmitParams{
		Track:   "backend",
		Content: "지원 동기입니다",
	})
	require.NoError(t, err)
	require.Equal(t, db.StatusPending, app.Status)

	// a pending application can be rewritten in place
	app, err = service.Submit(ctx, "21012345", SubmitParams{
		Track:   "frontend",
		Content: "수정된 지원서",
	})
	require.NoError(t, err)
	require.Equal(t, "frontend", app.Track)
	require.Equal(t, "수정된 지원서", app.Content)

	apps, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
}

func TestStatusTransitions(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.SetStatus(ctx, "21012345", db.StatusAccepted)
	require.ErrorIs(t, err, ErrNoApplication)

	_, err = service.Submit(ctx, "21012345", SubmitParams{Track: "backend", Content: "내용"})
	require.NoError(t, err)

	_, err = service.SetStatus(ctx, "21012345", "MAYBE")
	require.ErrorIs(t, err, ErrInvalidStatus)

	app, err := service.SetStatus(ctx, "21012345", db.StatusAccepted)
	require.NoError(t, err)
	require.Equal(t, db.StatusAccepted, app.Status)

	// decisions are final for the applicant
	_, err = service.Submit(ctx, "21012345", SubmitParams{Track: "backend", Content: "재지원"})
	require.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestGetOwnApplication(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.Get(ctx, "21012345")
	require.ErrorIs(t, err, ErrNoApplication)

	submitted, err := service.Submit(ctx, "21012345", SubmitParams{Track: "backend", Content: "내용"})
	require.NoError(t, err)

	got, err := service.Get(ctx, "21012345")
	require.NoError(t, err)
	require.Equal(t, submitted, got)
}
