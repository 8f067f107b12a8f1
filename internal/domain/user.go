package domain

import "time"

// User represents a catalog account. There is no authentication flow; users
// are plain bookkeeping records keyed by optional email.
type User struct {
	ID        int64
	Name      string
	Email     string
	Plan      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserUpdate carries optional field updates; nil means leave unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
	Plan  *string
}

// TryOnResult is a persisted single (non-batch) try-on outcome.
type TryOnResult struct {
	ID             int64
	UserID         int64
	OutfitID       int64
	ResultImageURL string
	TaskID         string
	CreatedAt      time.Time
	Outfit         *Outfit
}
