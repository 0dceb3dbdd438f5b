package db

import _ "embed"

//go:embed schema.sql
var Schema string

// user roles, ordered by privilege
const (
	RoleGuest  = "GUEST"
	RoleMember = "BABY_LION"
	RoleAdmin  = "ADMIN"
)

// application statuses
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)
