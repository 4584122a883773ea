package model

import "time"

// Activity is one exercise entry in a user's log.
//
// Duration is in minutes and may be fractional. Date is always set before an
// Activity reaches storage; the service substitutes the current time when the
// client sends none.
type Activity struct {
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Date        time.Time `json:"date"`
}

// ActivityReceipt is returned after an activity is appended: the stored
// activity plus the owner's id and username.
type ActivityReceipt struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Date        time.Time `json:"date"`
}

// LogView is the counted, filtered view of a user's log.
// Count always equals len(Log).
type LogView struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []Activity `json:"log"`
}
