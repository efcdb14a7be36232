package service

import "adaura-rewards/internal/pkg/clock"

// MaxStreak caps the login streak; day 8 of consecutive logins stays on
// the day-7 reward until the streak breaks.
const MaxStreak = 7

// advanceStreak computes the streak after a login on `today`.
// Unchanged if already logged in today, incremented (capped) if the last
// login was exactly yesterday, otherwise reset to 1 - covering both the
// first-ever login and any gap longer than a day.
func advanceStreak(prev int, lastLogin, today, yesterday string) int {
	switch lastLogin {
	case today:
		return prev
	case yesterday:
		if prev+1 > MaxStreak {
			return MaxStreak
		}
		return prev + 1
	default:
		return 1
	}
}

// rollQuota returns the action counter after the lazy daily reset:
// zero when the stored action date is not today, unchanged otherwise.
func rollQuota(count int, lastDate, today string) int {
	if clock.IsNewDay(lastDate, today) {
		return 0
	}
	return count
}

// rewardForStreak looks up the daily bonus for the given streak day from a
// 7-element schedule. Day N pays schedule[(N-1) mod 7]; a zero streak (the
// signup day, before any day boundary has passed) pays the day-1 reward.
func rewardForStreak(schedule []int64, streak int) int64 {
	if len(schedule) == 0 {
		return 0
	}
	if streak < 1 {
		streak = 1
	}
	return schedule[(streak-1)%len(schedule)]
}
