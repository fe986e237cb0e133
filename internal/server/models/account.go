// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered marketplace user. Provider employees share their
// organisation through ParentKey: resources created by any of them are owned
// by the parent (publisher) account.
type Account struct {
	ID           int64
	Key          uuid.UUID
	ParentKey    uuid.UUID
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}
