// Package notification decides whether a moment is acceptable for contacting a learner.
//
// All local-time arithmetic happens in the learner's IANA timezone, so quiet
// hours and preferred times keep their wall-clock meaning across DST changes.
package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/quiztube/pkg/models"
)

// Hard guard rails applied regardless of preferences
const (
	EarliestHour = 7
	LatestHour   = 22

	// DefaultSendHour is used for the next window when no preferred time is set
	DefaultSendHour = 9

	// PreferredWindow is how close to the preferred time counts as "on time"
	PreferredWindow = 30 * time.Minute
)

// Decision reasons
const (
	ReasonNotPreferredDay = "not a preferred day"
	ReasonQuietHours      = "within quiet hours"
	ReasonTooEarly        = "too early"
	ReasonTooLate         = "too late"
	ReasonPreferredWindow = "within preferred window"
	ReasonGoodTime        = "good time to send"
)

// ErrInvalidPreferences marks preference data the gate cannot interpret
var ErrInvalidPreferences = errors.New("invalid notification preferences")

// OptimalSendTime is the gate's answer for one learner at one instant
type OptimalSendTime struct {
	ShouldSend          bool       `json:"should_send"`
	Reason              string     `json:"reason"`
	NextAvailableWindow *time.Time `json:"next_available_window,omitempty"`
}

// schedule is the parsed form of UserPreferences
type schedule struct {
	loc        *time.Location
	preferred  *clockTime
	quietStart *clockTime
	quietEnd   *clockTime
	days       map[time.Weekday]bool
}

func parseSchedule(prefs models.UserPreferences) (*schedule, error) {
	loc, err := LoadLocation(prefs.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	s := &schedule{loc: loc, days: make(map[time.Weekday]bool)}

	if prefs.PreferredTime != nil && *prefs.PreferredTime != "" {
		c, err := parseClock(*prefs.PreferredTime)
		if err != nil {
			return nil, fmt.Errorf("%w: preferred time: %v", ErrInvalidPreferences, err)
		}
		s.preferred = &c
	}

	hasStart := prefs.QuietHoursStart != nil && *prefs.QuietHoursStart != ""
	hasEnd := prefs.QuietHoursEnd != nil && *prefs.QuietHoursEnd != ""
	if hasStart != hasEnd {
		return nil, fmt.Errorf("%w: quiet hours start and end must be set together", ErrInvalidPreferences)
	}
	if hasStart {
		start, err := parseClock(*prefs.QuietHoursStart)
		if err != nil {
			return nil, fmt.Errorf("%w: quiet hours start: %v", ErrInvalidPreferences, err)
		}
		end, err := parseClock(*prefs.QuietHoursEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: quiet hours end: %v", ErrInvalidPreferences, err)
		}
		s.quietStart, s.quietEnd = &start, &end
	}

	for _, name := range prefs.PreferredDays {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
		}
		s.days[day] = true
	}

	return s, nil
}

// sendClock is the time of day used when proposing a future window. A
// preferred time outside the guard rails falls back to the earliest hour.
func (s *schedule) sendClock() clockTime {
	if s.preferred == nil {
		return clockTime{hour: DefaultSendHour}
	}
	if s.preferred.hour < EarliestHour || s.preferred.hour >= LatestHour {
		return clockTime{hour: EarliestHour}
	}
	return *s.preferred
}

// inQuietHours reports whether local falls within [start, end).
// start > end wraps past midnight; start == end is an empty range.
func (s *schedule) inQuietHours(local time.Time) bool {
	if s.quietStart == nil {
		return false
	}
	cur, start, end := secondsOfDay(local), s.quietStart.seconds(), s.quietEnd.seconds()
	switch {
	case start < end:
		return cur >= start && cur < end
	case start > end:
		return cur >= start || cur < end
	default:
		return false
	}
}

// maxSettleSteps bounds the search for a window every check accepts
const maxSettleSteps = 16

// IsGoodTimeToNotify runs the gate checks in order; the first failing check
// rejects with a reason. The proposed next window is one all checks accept.
func IsGoodTimeToNotify(prefs models.UserPreferences, now time.Time) (OptimalSendTime, error) {
	s, err := parseSchedule(prefs)
	if err != nil {
		return OptimalSendTime{}, err
	}

	decision := s.evaluate(now.In(s.loc))
	if !decision.ShouldSend {
		next := s.settle(*decision.NextAvailableWindow)
		decision.NextAvailableWindow = &next
	}
	return decision, nil
}

// evaluate applies the checks to local; a rejection carries the moment the
// failing check alone would next pass
func (s *schedule) evaluate(local time.Time) OptimalSendTime {
	if len(s.days) > 0 && !s.days[local.Weekday()] {
		return reject(ReasonNotPreferredDay, s.nextPreferredDay(local))
	}

	if s.inQuietHours(local) {
		end := *s.quietEnd
		offset := 0
		if secondsOfDay(local) >= end.seconds() {
			offset = 1
		}
		return reject(ReasonQuietHours, at(local, offset, end))
	}

	earliest := clockTime{hour: EarliestHour}
	if local.Hour() < EarliestHour {
		return reject(ReasonTooEarly, at(local, 0, earliest))
	}
	if local.Hour() >= LatestHour {
		return reject(ReasonTooLate, at(local, 1, earliest))
	}

	if s.preferred != nil && withinWindow(secondsOfDay(local), s.preferred.seconds()) {
		return OptimalSendTime{ShouldSend: true, Reason: ReasonPreferredWindow}
	}

	return OptimalSendTime{ShouldSend: true, Reason: ReasonGoodTime}
}

// settle moves a candidate forward until every check accepts it. Each
// rejection points strictly later, so the walk terminates; preferences
// that leave no open window return the last candidate.
func (s *schedule) settle(candidate time.Time) time.Time {
	for i := 0; i < maxSettleSteps; i++ {
		d := s.evaluate(candidate)
		if d.ShouldSend {
			break
		}
		candidate = *d.NextAvailableWindow
	}
	return candidate
}

// nextPreferredDay finds the next allowed weekday after local, at the send clock
func (s *schedule) nextPreferredDay(local time.Time) time.Time {
	for offset := 1; offset <= 7; offset++ {
		if s.days[local.AddDate(0, 0, offset).Weekday()] {
			return at(local, offset, s.sendClock())
		}
	}
	return at(local, 7, s.sendClock())
}

// withinWindow compares two times of day on a 24h circle
func withinWindow(cur, target int) bool {
	diff := cur - target
	if diff < 0 {
		diff = -diff
	}
	if wrapped := 24*3600 - diff; wrapped < diff {
		diff = wrapped
	}
	return diff <= int(PreferredWindow/time.Second)
}

func reject(reason string, next time.Time) OptimalSendTime {
	return OptimalSendTime{ShouldSend: false, Reason: reason, NextAvailableWindow: &next}
}
