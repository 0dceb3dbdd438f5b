package db

import (
	"context"
)

const createUser = `-- name: CreateUser :exec
INSERT INTO users (studentId, password, name, major, role, createdAt)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateUserParams struct {
	Studentid string
	Password  string
	Name      string
	Major     string
	Role      string
	Createdat int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.Studentid,
		arg.Password,
		arg.Name,
		arg.Major,
		arg.Role,
		arg.Createdat,
	)
	return err
}

const getUser = `-- name: GetUser :one
SELECT studentId, password, name, major, bio, team, track, role, createdAt
FROM users WHERE studentId = ?
`

func (q *Queries) GetUser(ctx context.Context, studentid string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, studentid)
	var i User
	err := row.Scan(
		&i.Studentid,
		&i.Password,
		&i.Name,
		&i.Major,
		&i.Bio,
		&i.Team,
		&i.Track,
		&i.Role,
		&i.Createdat,
	)
	return i, err
}

const listUsers = `-- name: ListUsers :many
SELECT studentId, password, name, major, bio, team, track, role, createdAt
FROM users ORDER BY createdAt ASC
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.Studentid,
			&i.Password,
			&i.Name,
			&i.Major,
			&i.Bio,
			&i.Team,
			&i.Track,
			&i.Role,
			&i.Createdat,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserProfile = `-- name: UpdateUserProfile :exec
UPDATE users SET bio = ?, team = ?, track = ? WHERE studentId = ?
`

type UpdateUserProfileParams struct {
	Bio       string
	Team      string
	Track     string
	Studentid string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) error {
	_, err := q.db.ExecContext(ctx, updateUserProfile,
		arg.Bio,
		arg.Team,
		arg.Track,
		arg.Studentid,
	)
	return err
}

const updateUserRole = `-- name: UpdateUserRole :exec
UPDATE users SET role = ? WHERE studentId = ?
`

type UpdateUserRoleParams struct {
	Role      string
	Studentid string
}

func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, updateUserRole, arg.Role, arg.Studentid)
	return err
}

const createToken = `-- name: CreateToken :exec
INSERT INTO tokens (token, studentId, createdAt) VALUES (?, ?, ?)
`

type CreateTokenParams struct {
	Token     string
	Studentid string
	Createdat int64
}

func (q *Queries) CreateToken(ctx context.Context, arg CreateTokenParams) error {
	_, err := q.db.ExecContext(ctx, createToken, arg.Token, arg.Studentid, arg.Createdat)
	return err
}

const getUserFromToken = `-- name: GetUserFromToken :one
SELECT users.studentId, users.password, users.name, users.major, users.bio,
       users.team, users.track, users.role, users.createdAt
FROM tokens INNER JOIN users ON tokens.studentId = users.studentId
WHERE tokens.token = ?
`

func (q *Queries) GetUserFromToken(ctx context.Context, token string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserFromToken, token)
	var i User
	err := row.Scan(
		&i.Studentid,
		&i.Password,
		&i.Name,
		&i.Major,
		&i.Bio,
		&i.Team,
		&i.Track,
		&i.Role,
		&i.Createdat,
	)
	return i, err
}

const deleteToken = `-- name: DeleteToken :exec
DELETE FROM tokens WHERE token = ?
`

func (q *Queries) DeleteToken(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteToken, token)
	return err
}

const createVerification = `-- name: CreateVerification :exec
INSERT INTO verifications (code, studentId, name, major, expiresAt)
VALUES (?, ?, ?, ?, ?)
`

type CreateVerificationParams struct {
	Code      string
	Studentid string
	Name      string
	Major     string
	Expiresat int64
}

func (q *Queries) CreateVerification(ctx context.Context, arg CreateVerificationParams) error {
	_, err := q.db.ExecContext(ctx, createVerification,
		arg.Code,
		arg.Studentid,
		arg.Name,
		arg.Major,
		arg.Expiresat,
	)
	return err
}

const getVerification = `-- name: GetVerification :one
SELECT code, studentId, name, major, expiresAt
FROM verifications WHERE code = ?
`

func (q *Queries) GetVerification(ctx context.Context, code string) (Verification, error) {
	row := q.db.QueryRowContext(ctx, getVerification, code)
	var i Verification
	err := row.Scan(
		&i.Code,
		&i.Studentid,
		&i.Name,
		&i.Major,
		&i.Expiresat,
	)
	return i, err
}

const deleteVerification = `-- name: DeleteVerification :exec
DELETE FROM verifications WHERE code = ?
`

func (q *Queries) DeleteVerification(ctx context.Context, code string) error {
	_, err := q.db.ExecContext(ctx, deleteVerification, code)
	return err
}

const deleteExpiredVerifications = `-- name: DeleteExpiredVerifications :exec
DELETE FROM verifications WHERE expiresAt < ?
`

func (q *Queries) DeleteExpiredVerifications(ctx context.Context, expiresat int64) error {
	_, err := q.db.ExecContext(ctx, deleteExpiredVerifications, expiresat)
	return err
}

const upsertApplication = `-- name: UpsertApplication :exec
INSERT INTO applications (studentId, track, content, status, submittedAt)
VALUES (?, ?, ?, 'PENDING', ?)
ON CONFLICT (studentId) DO UPDATE
SET track = excluded.track, content = excluded.content,
    submittedAt = excluded.submittedAt
WHERE applications.status = 'PENDING'
`

type UpsertApplicationParams struct {
	Studentid   string
	Track       string
	Content     string
	Submittedat int64
}

func (q *Queries) UpsertApplication(ctx context.Context, arg UpsertApplicationParams) error {
	_, err := q.db.ExecContext(ctx, upsertApplication,
		arg.Studentid,
		arg.Track,
		arg.Content,
		arg.Submittedat,
	)
	return err
}

const getApplication = `-- name: GetApplication :one
SELECT studentId, track, content, status, submittedAt
FROM applications WHERE studentId = ?
`

func (q *Queries) GetApplication(ctx context.Context, studentid string) (Application, error) {
	row := q.db.QueryRowContext(ctx, getApplication, studentid)
	var i Application
	err := row.Scan(
		&i.Studentid,
		&i.Track,
		&i.Content,
		&i.Status,
		&i.Submittedat,
	)
	return i, err
}

const listApplications = `-- name: ListApplications :many
SELECT studentId, track, content, status, submittedAt
FROM applications ORDER BY submittedAt ASC
`

func (q *Queries) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := q.db.QueryContext(ctx, listApplications)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Application
	for rows.Next() {
		var i Application
		if err := rows.Scan(
			&i.Studentid,
			&i.Track,
			&i.Content,
			&i.Status,
			&i.Submittedat,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateApplicationStatus = `-- name: UpdateApplicationStatus :exec
UPDATE applications SET status = ? WHERE studentId = ?
`

type UpdateApplicationStatusParams struct {
	Status    string
	Studentid string
}

func (q *Queries) UpdateApplicationStatus(ctx context.Context, arg UpdateApplicationStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateApplicationStatus, arg.Status, arg.Studentid)
	return err
}

const createAttendanceSession = `-- name: CreateAttendanceSession :one
INSERT INTO attendance_sessions (code, description, active, createdAt)
VALUES (?, ?, 1, ?)
RETURNING id, code, description, active, createdAt
`

type CreateAttendanceSessionParams struct {
	Code        string
	Description string
	Createdat   int64
}

func (q *Queries) CreateAttendanceSession(ctx context.Context, arg CreateAttendanceSessionParams) (AttendanceSession, error) {
	row := q.db.QueryRowContext(ctx, createAttendanceSession,
		arg.Code,
		arg.Description,
		arg.Createdat,
	)
	var i AttendanceSession
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Description,
		&i.Active,
		&i.Createdat,
	)
	return i, err
}

const getAttendanceSessionByCode = `-- name: GetAttendanceSessionByCode :one
SELECT id, code, description, active, createdAt
FROM attendance_sessions WHERE code = ?
`

func (q *Queries) GetAttendanceSessionByCode(ctx context.Context, code string) (AttendanceSession, error) {
	row := q.db.QueryRowContext(ctx, getAttendanceSessionByCode, code)
	var i AttendanceSession
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Description,
		&i.Active,
		&i.Createdat,
	)
	return i, err
}

const listAttendanceSessions = `-- name: ListAttendanceSessions :many
SELECT id, code, description, active, createdAt
FROM attendance_sessions ORDER BY createdAt DESC
`

func (q *Queries) ListAttendanceSessions(ctx context.Context) ([]AttendanceSession, error) {
	rows, err := q.db.QueryContext(ctx, listAttendanceSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttendanceSession
	for rows.Next() {
		var i AttendanceSession
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Description,
			&i.Active,
			&i.Createdat,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActiveAttendanceSessions = `-- name: ListActiveAttendanceSessions :many
SELECT id, code, description, active, createdAt
FROM attendance_sessions WHERE active = 1 ORDER BY createdAt DESC
`

func (q *Queries) ListActiveAttendanceSessions(ctx context.Context) ([]AttendanceSession, error) {
	rows, err := q.db.QueryContext(ctx, listActiveAttendanceSessions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttendanceSession
	for rows.Next() {
		var i AttendanceSession
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Description,
			&i.Active,
			&i.Createdat,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const closeAttendanceSession = `-- name: CloseAttendanceSession :exec
UPDATE attendance_sessions SET active = 0 WHERE id = ?
`

func (q *Queries) CloseAttendanceSession(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, closeAttendanceSession, id)
	return err
}

const createAttendanceRecord = `-- name: CreateAttendanceRecord :exec
INSERT INTO attendance_records (sessionId, studentId, joinedAt)
VALUES (?, ?, ?)
`

type CreateAttendanceRecordParams struct {
	Sessionid int64
	Studentid string
	Joinedat  int64
}

func (q *Queries) CreateAttendanceRecord(ctx context.Context, arg CreateAttendanceRecordParams) error {
	_, err := q.db.ExecContext(ctx, createAttendanceRecord,
		arg.Sessionid,
		arg.Studentid,
		arg.Joinedat,
	)
	return err
}

const getAttendanceRecord = `-- name: GetAttendanceRecord :one
SELECT sessionId, studentId, joinedAt
FROM attendance_records WHERE sessionId = ? AND studentId = ?
`

type GetAttendanceRecordParams struct {
	Sessionid int64
	Studentid string
}

func (q *Queries) GetAttendanceRecord(ctx context.Context, arg GetAttendanceRecordParams) (AttendanceRecord, error) {
	row := q.db.QueryRowContext(ctx, getAttendanceRecord, arg.Sessionid, arg.Studentid)
	var i AttendanceRecord
	err := row.Scan(&i.Sessionid, &i.Studentid, &i.Joinedat)
	return i, err
}

const listAttendanceBySession = `-- name: ListAttendanceBySession :many
SELECT attendance_records.studentId, users.name, attendance_records.joinedAt
FROM attendance_records INNER JOIN users
ON attendance_records.studentId = users.studentId
WHERE attendance_records.sessionId = ?
ORDER BY attendance_records.joinedAt ASC
`

type ListAttendanceBySessionRow struct {
	Studentid string
	Name      string
	Joinedat  int64
}

func (q *Queries) ListAttendanceBySession(ctx context.Context, sessionid int64) ([]ListAttendanceBySessionRow, error) {
	rows, err := q.db.QueryContext(ctx, listAttendanceBySession, sessionid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListAttendanceBySessionRow
	for rows.Next() {
		var i ListAttendanceBySessionRow
		if err := rows.Scan(&i.Studentid, &i.Name, &i.Joinedat); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAttendanceByStudent = `-- name: ListAttendanceByStudent :many
SELECT attendance_sessions.id, attendance_sessions.code,
       attendance_sessions.description, attendance_records.joinedAt
FROM attendance_records INNER JOIN attendance_sessions
ON attendance_records.sessionId = attendance_sessions.id
WHERE attendance_records.studentId = ?
ORDER BY attendance_records.joinedAt DESC
`

type ListAttendanceByStudentRow struct {
	ID          int64
	Code        string
	Description string
	Joinedat    int64
}

func (q *Queries) ListAttendanceByStudent(ctx context.Context, studentid string) ([]ListAttendanceByStudentRow, error) {
	rows, err := q.db.QueryContext(ctx, listAttendanceByStudent, studentid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListAttendanceByStudentRow
	for rows.Next() {
		var i ListAttendanceByStudentRow
		if err := rows.Scan(&i.ID, &i.Code, &i.Description, &i.Joinedat); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
