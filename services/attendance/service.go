package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lionclub-backend/internal/db"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var ErrNoSuchSession = fmt.Errorf("no session matches that code")
var ErrSessionClosed = fmt.Errorf("the session is no longer accepting check-ins")
var ErrAlreadyJoined = fmt.Errorf("already checked in to this session")

const codeLength = 6

type Service struct {
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{qry: db.New(database)}
}

type Session struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   int64      `json:"createdAt"`
	Attendees   []Attendee `json:"attendees,omitempty"`
}

type Attendee struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	JoinedAt  int64  `json:"joinedAt"`
}

func sessionFromRow(row db.AttendanceSession) Session {
	return Session{
		ID:          row.ID,
		Code:        row.Code,
		Description: row.Description,
		Active:      row.Active != 0,
		CreatedAt:   row.Createdat,
	}
}

// CreateSession opens a new check-in window with a short shareable
// code, meant to be read out loud at the start of a meeting.
func (s Service) CreateSession(ctx context.Context, description string) (Session, error) {
	ctx, span := tracer.Start(ctx, "CreateSession")
	defer span.End()

	code, err := random.String(codeLength)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate session code")
		return Session{}, err
	}
	code = strings.ToUpper(code)

	row, err := s.qry.CreateAttendanceSession(ctx, db.CreateAttendanceSessionParams{
		Code:        code,
		Description: description,
		Createdat:   time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert session row")
		return Session{}, err
	}
	return sessionFromRow(row), nil
}

// ListSessions returns every session with its attendees, newest first.
func (s Service) ListSessions(ctx context.Context) ([]Session, error) {
	ctx, span := tracer.Start(ctx, "ListSessions")
	defer span.End()

	rows, err := s.qry.ListAttendanceSessions(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sessions := make([]Session, len(rows))
	for i, row := range rows {
		session := sessionFromRow(row)
		attendees, err := s.qry.ListAttendanceBySession(ctx, row.ID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		for _, a := range attendees {
			session.Attendees = append(session.Attendees, Attendee{
				StudentID: a.Studentid,
				Name:      a.Name,
				JoinedAt:  a.Joinedat,
			})
		}
		sessions[i] = session
	}
	return sessions, nil
}

// ListActiveSessions returns open sessions without attendee details,
// the member-facing view.
func (s Service) ListActiveSessions(ctx context.Context) ([]Session, error) {
	ctx, span := tracer.Start(ctx, "ListActiveSessions")
	defer span.End()

	rows, err := s.qry.ListActiveAttendanceSessions(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sessions := make([]Session, len(rows))
	for i, row := range rows {
		sessions[i] = sessionFromRow(row)
	}
	return sessions, nil
}

func (s Service) CloseSession(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "CloseSession")
	defer span.End()

	err := s.qry.CloseAttendanceSession(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Join checks the caller in to the session matching the given code.
func (s Service) Join(ctx context.Context, studentID, code string) (Session, error) {
	ctx, span := tracer.Start(ctx, "Join")
	defer span.End()

	code = strings.ToUpper(strings.TrimSpace(code))
	session, err := s.qry.GetAttendanceSessionByCode(ctx, code)
	if err == sql.ErrNoRows {
		span.SetStatus(codes.Error, "unknown session code")
		return Session{}, ErrNoSuchSession
	}
	if err != nil {
		span.RecordError(err)
		return Session{}, err
	}
	if session.Active == 0 {
		span.SetStatus(codes.Error, "session closed")
		return Session{}, ErrSessionClosed
	}

	_, err = s.qry.GetAttendanceRecord(ctx, db.GetAttendanceRecordParams{
		Sessionid: session.ID,
		Studentid: studentID,
	})
	if err == nil {
		span.SetStatus(codes.Error, "duplicate check-in")
		return Session{}, ErrAlreadyJoined
	}
	if err != sql.ErrNoRows {
		span.RecordError(err)
		return Session{}, err
	}

	err = s.qry.CreateAttendanceRecord(ctx, db.CreateAttendanceRecordParams{
		Sessionid: session.ID,
		Studentid: studentID,
		Joinedat:  time.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert attendance record")
		return Session{}, err
	}
	return sessionFromRow(session), nil
}

type HistoryEntry struct {
	SessionID   int64  `json:"sessionId"`
	Code        string `json:"code"`
	Description string `json:"description"`
	JoinedAt    int64  `json:"joinedAt"`
}

// History lists the caller's own check-ins, newest first.
func (s Service) History(ctx context.Context, studentID string) ([]HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()

	rows, err := s.qry.ListAttendanceByStudent(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	entries := make([]HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = HistoryEntry{
			SessionID:   row.ID,
			Code:        row.Code,
			Description: row.Description,
			JoinedAt:    row.Joinedat,
		}
	}
	return entries, nil
}
