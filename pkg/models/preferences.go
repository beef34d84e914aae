package models

import "time"

// Defaults applied when a user has not configured their preferences
const (
	DefaultTimezone              = "UTC"
	DefaultMaxDailyReviews       = 20
	DefaultEmailPromptsFrequency = 3
)

// UserPreferences is the per-user configuration read by the notification gate
// and the topic prioritizer. QuietHoursStart and QuietHoursEnd are either both
// set or both nil.
type UserPreferences struct {
	UserID                int64     `json:"user_id" db:"user_id"`
	Timezone              string    `json:"timezone" db:"timezone"`
	PreferredTime         *string   `json:"preferred_time" db:"preferred_time"` // HH:MM
	QuietHoursStart       *string   `json:"quiet_hours_start" db:"quiet_hours_start"`
	QuietHoursEnd         *string   `json:"quiet_hours_end" db:"quiet_hours_end"`
	PreferredDays         []string  `json:"preferred_days" db:"-"`
	MaxDailyReviews       int       `json:"max_daily_reviews" db:"max_daily_reviews"`
	EmailPromptsFrequency int       `json:"email_prompts_frequency" db:"email_prompts_frequency"` // per week
	EmailPromptsEnabled   bool      `json:"email_prompts_enabled" db:"email_prompts_enabled"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPreferences returns the preferences used for a user without a stored row
func DefaultPreferences(userID int64) UserPreferences {
	return UserPreferences{
		UserID:                userID,
		Timezone:              DefaultTimezone,
		MaxDailyReviews:       DefaultMaxDailyReviews,
		EmailPromptsFrequency: DefaultEmailPromptsFrequency,
		EmailPromptsEnabled:   true,
	}
}
