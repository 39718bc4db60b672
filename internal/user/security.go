package user

import "time"

// Thresholds for the account security heuristic.
const (
	securityBaseScore       = 80
	securityMaxScore        = 100
	recentLoginBonus        = 10
	recentLoginWindow       = 30 * 24 * time.Hour
	establishedAccountBonus = 10
	establishedAccountAge   = 180 * 24 * time.Hour
)

// SecurityScore computes an additive account-health score in [0, 100]:
// a base value, a bonus for a recent login, and a bonus for account age,
// clamped to the maximum.
func SecurityScore(lastLoginAt *time.Time, createdAt time.Time, now time.Time) int {
	score := securityBaseScore

	if lastLoginAt != nil && now.Sub(*lastLoginAt) <= recentLoginWindow {
		score += recentLoginBonus
	}

	if !createdAt.IsZero() && now.Sub(createdAt) >= establishedAccountAge {
		score += establishedAccountBonus
	}

	if score > securityMaxScore {
		score = securityMaxScore
	}
	return score
}

type SecuritySummary struct {
	Score       int        `json:"score"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	MemberSince time.Time  `json:"member_since"`
}
