package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"lionclub-backend/internal/db"
	"lionclub-backend/lib/scrapers/portal"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite"
)

var ErrInvalidCredentials = fmt.Errorf("incorrect student id or password")
var ErrInvalidVerification = fmt.Errorf("invalid or expired verification code")
var ErrAlreadyRegistered = fmt.Errorf("an account already exists for this student id")
var ErrInvalidToken = fmt.Errorf("invalid session token")

// verification records outlive the portal round trip just long enough
// for the user to finish the registration form
const verificationTTL = 10 * time.Minute

// PortalVerifier abstracts the university portal so tests can swap in a
// canned verifier without a stub web server.
type PortalVerifier interface {
	Verify(ctx context.Context, studentID, password string) portal.Result
}

type Service struct {
	db     *sql.DB
	qry    *db.Queries
	portal PortalVerifier
}

func NewService(database *sql.DB, verifier PortalVerifier) Service {
	return Service{
		db:     database,
		qry:    db.New(database),
		portal: verifier,
	}
}

func normalizeStudentID(studentID string) string {
	return strings.Trim(studentID, " \t\n")
}

type VerifyResult struct {
	Verified bool
	// Code hands the verified identity back to the registration step
	// without trusting the client to echo name/major
	Code  string
	Name  string
	Major string
}

// Verify checks the credentials against the university portal and, on
// success, stores a short-lived verification record whose code gates
// Register.
func (s Service) Verify(ctx context.Context, studentID, password string) (VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "Verify")
	defer span.End()

	studentID = normalizeStudentID(studentID)
	result := s.portal.Verify(ctx, studentID, password)
	if !result.Verified {
		return VerifyResult{}, nil
	}

	code, err := random.String(32)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate verification code")
		return VerifyResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VerifyResult{}, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteExpiredVerifications(ctx, time.Now().Unix())
	if err != nil {
		return VerifyResult{}, err
	}
	err = txqry.CreateVerification(ctx, db.CreateVerificationParams{
		Code:      code,
		Studentid: studentID,
		Name:      result.Name,
		Major:     result.Major,
		Expiresat: time.Now().Add(verificationTTL).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert verification record")
		return VerifyResult{}, err
	}

	err = tx.Commit()
	if err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{
		Verified: true,
		Code:     code,
		Name:     result.Name,
		Major:    result.Major,
	}, nil
}

type RegisterParams struct {
	StudentID string
	Password  string
	Code      string
}

// Register creates a local account for a previously verified student.
// name and major come from the stored verification record, never from
// the request.
func (s Service) Register(ctx context.Context, params RegisterParams) (db.User, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	studentID := normalizeStudentID(params.StudentID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return db.User{}, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	record, err := txqry.GetVerification(ctx, params.Code)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Error, "no such verification record")
		return db.User{}, ErrInvalidVerification
	}
	if err != nil {
		span.RecordError(err)
		return db.User{}, err
	}
	if record.Studentid != studentID || record.Expiresat < time.Now().Unix() {
		span.SetStatus(codes.Error, "verification record mismatched or expired")
		return db.User{}, ErrInvalidVerification
	}

	_, err = txqry.GetUser(ctx, studentID)
	if err == nil {
		return db.User{}, ErrAlreadyRegistered
	}
	if err != sql.ErrNoRows {
		span.RecordError(err)
		return db.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash password")
		return db.User{}, err
	}

	user := db.CreateUserParams{
		Studentid: studentID,
		Password:  string(hashed),
		Name:      record.Name,
		Major:     record.Major,
		Role:      db.RoleGuest,
		Createdat: time.Now().Unix(),
	}
	err = txqry.CreateUser(ctx, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create user")
		return db.User{}, err
	}
	// the record is single use
	err = txqry.DeleteVerification(ctx, params.Code)
	if err != nil {
		span.RecordError(err)
		return db.User{}, err
	}

	err = tx.Commit()
	if err != nil {
		return db.User{}, err
	}

	return db.User{
		Studentid: user.Studentid,
		Name:      user.Name,
		Major:     user.Major,
		Role:      user.Role,
		Createdat: user.Createdat,
	}, nil
}

func (s Service) createToken(ctx context.Context, studentID string) (string, error) {
	ctx, span := tracer.Start(ctx, "createToken")
	defer span.End()

	nonce := make([]byte, 32)
	_, err := rand.Read(nonce)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate token")
		return "", err
	}
	token := hex.EncodeToString(nonce)
	err = s.qry.CreateToken(ctx, db.CreateTokenParams{
		Token:     token,
		Studentid: studentID,
		Createdat: time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert token row")
		return "", err
	}

	return token, nil
}

// Login checks the local password hash and issues a session token. it
// never contacts the portal.
func (s Service) Login(ctx context.Context, studentID, password string) (string, db.User, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	studentID = normalizeStudentID(studentID)

	user, err := s.qry.GetUser(ctx, studentID)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Error, "no such user")
		return "", db.User{}, ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		return "", db.User{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if err != nil {
		span.SetStatus(codes.Error, "password mismatch")
		return "", db.User{}, ErrInvalidCredentials
	}

	token, err := s.createToken(ctx, studentID)
	if err != nil {
		return "", db.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s Service) VerifyToken(ctx context.Context, token string) (db.User, error) {
	ctx, span := tracer.Start(ctx, "VerifyToken")
	defer span.End()

	user, err := s.qry.GetUserFromToken(ctx, token)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Error, "no such token")
		return db.User{}, ErrInvalidToken
	}
	if err != nil {
		span.RecordError(err)
		return db.User{}, err
	}

	user.Password = ""
	return user, nil
}

func (s Service) Logout(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	err := s.qry.DeleteToken(ctx, token)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
