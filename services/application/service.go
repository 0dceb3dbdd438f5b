package application

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lionclub-backend/internal/db"

	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var ErrNoApplication = fmt.Errorf("no application submitted")
var ErrAlreadyDecided = fmt.Errorf("the application has already been decided")
var ErrInvalidStatus = fmt.Errorf("invalid application status")

type Service struct {
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{qry: db.New(database)}
}

type SubmitParams struct {
	Track   string `json:"track"`
	Content string `json:"content"`
}

// Submit files the caller's application. resubmitting while the
// application is still pending replaces it; a decided application is
// final.
func (s Service) Submit(ctx context.Context, studentID string, params SubmitParams) (db.Application, error) {
	ctx, span := tracer.Start(ctx, "Submit")
	defer span.End()

	existing, err := s.qry.GetApplication(ctx, studentID)
	if err != nil && err != sql.ErrNoRows {
		span.RecordError(err)
		return db.Application{}, err
	}
	if err == nil && existing.Status != db.StatusPending {
		span.SetStatus(codes.Error, "application already decided")
		return db.Application{}, ErrAlreadyDecided
	}

	err = s.qry.UpsertApplication(ctx, db.UpsertApplicationParams{
		Studentid:   studentID,
		Track:       params.Track,
		Content:     params.Content,
		Submittedat: time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert application")
		return db.Application{}, err
	}
	return s.qry.GetApplication(ctx, studentID)
}

func (s Service) Get(ctx context.Context, studentID string) (db.Application, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	app, err := s.qry.GetApplication(ctx, studentID)
	if err == sql.ErrNoRows {
		return db.Application{}, ErrNoApplication
	}
	if err != nil {
		span.RecordError(err)
		return db.Application{}, err
	}
	return app, nil
}

func (s Service) List(ctx context.Context) ([]db.Application, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	apps, err := s.qry.ListApplications(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list applications")
		return nil, err
	}
	return apps, nil
}

func validStatus(status string) bool {
	switch status {
	case db.StatusPending, db.StatusAccepted, db.StatusRejected:
		return true
	}
	return false
}

// SetStatus records an admin decision on an application.
func (s Service) SetStatus(ctx context.Context, studentID, status string) (db.Application, error) {
	ctx, span := tracer.Start(ctx, "SetStatus")
	defer span.End()

	if !validStatus(status) {
		span.SetStatus(codes.Error, "rejected unknown status")
		return db.Application{}, ErrInvalidStatus
	}
	if _, err := s.Get(ctx, studentID); err != nil {
		return db.Application{}, err
	}

	err := s.qry.UpdateApplicationStatus(ctx, db.UpdateApplicationStatusParams{
		Status:    status,
		Studentid: studentID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update status")
		return db.Application{}, err
	}
	return s.qry.GetApplication(ctx, studentID)
}
