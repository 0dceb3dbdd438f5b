package auth

import (
	"context"
	"testing"
	"time"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/scrapers/portal"
	"lionclub-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

// fakePortal accepts a single credential pair and returns a fixed
// identity for it
type fakePortal struct {
	studentID string
	password  string
	name      string
	major     string
}

func (p fakePortal) Verify(ctx context.Context, studentID, password string) portal.Result {
	if studentID != p.studentID || password != p.password {
		return portal.Result{}
	}
	return portal.Result{Verified: true, Name: p.name, Major: p.major}
}

func setup(t testing.TB) (Service, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/auth",
		DbSchema: db.Schema,
	})
	service := NewService(res.DB, fakePortal{
		studentID: "21012345",
		password:  "portal-password",
		name:      "김철수",
		major:     "컴퓨터학부",
	})
	return service, cleanup
}

func TestVerifyRegisterLoginRoundTrip(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	verified, err := service.Verify(ctx, "21012345", "portal-password")
	require.NoError(t, err)
	require.True(t, verified.Verified)
	require.NotEmpty(t, verified.Code)
	require.Equal(t, "김철수", verified.Name)
	require.Equal(t, "컴퓨터학부", verified.Major)

	user, err := service.Register(ctx, RegisterParams{
		StudentID: "21012345",
		Password:  "site-password",
		Code:      verified.Code,
	})
	require.NoError(t, err)
	require.Equal(t, db.RoleGuest, user.Role)
	// identity comes from the verification record, not the request
	require.Equal(t, "김철수", user.Name)
	require.Equal(t, "컴퓨터학부", user.Major)

	// the site password is independent from the portal password
	_, _, err = service.Login(ctx, "21012345", "portal-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	token, loggedIn, err := service.Login(ctx, "21012345", "site-password")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Empty(t, loggedIn.Password)

	fromToken, err := service.VerifyToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "21012345", fromToken.Studentid)
	require.Empty(t, fromToken.Password)

	require.NoError(t, service.Logout(ctx, token))
	_, err = service.VerifyToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectedByPortal(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()

	verified, err := service.Verify(context.Background(), "21012345", "wrong")
	require.NoError(t, err)
	require.Equal(t, VerifyResult{}, verified)
}

func TestRegisterRequiresMatchingRecord(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterParams{
		StudentID: "21012345",
		Password:  "site-password",
		Code:      "made-up-code",
	})
	require.ErrorIs(t, err, ErrInvalidVerification)

	verified, err := service.Verify(ctx, "21012345", "portal-password")
	require.NoError(t, err)

	// the code is bound to the student id it verified
	_, err = service.Register(ctx, RegisterParams{
		StudentID: "99999999",
		Password:  "site-password",
		Code:      verified.Code,
	})
	require.ErrorIs(t, err, ErrInvalidVerification)
}

func TestRegisterConsumesRecord(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	verified, err := service.Verify(ctx, "21012345", "portal-password")
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterParams{
		StudentID: "21012345",
		Password:  "site-password",
		Code:      verified.Code,
	})
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterParams{
		StudentID: "21012345",
		Password:  "other-password",
		Code:      verified.Code,
	})
	require.ErrorIs(t, err, ErrInvalidVerification)
}

func TestExpiredRecordRejected(t *testing.T) {
	service, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	verified, err := service.Verify(ctx, "21012345", "portal-password")
	require.NoError(t, err)

	// age the record past its ttl
	_, err = service.db.ExecContext(ctx,
		"UPDATE verifications SET expiresAt = ? WHERE code = ?",
		time.Now().Add(-time.Minute).Unix(), verified.Code)
	require.NoError(t, err)

	_, err = service.Register(ctx, RegisterParams{
		StudentID: "21012345",
		Password:  "site-password",
		Code:      verified.Code,
	})
	require.ErrorIs(t, err, ErrInvalidVerification)
}
