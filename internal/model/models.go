// Package model defines the data models for the Adaura rewards backend.
package model

import "time"

// User represents a player account in the rewards system.
// Identity is the case-sensitive email the account was registered with.
// Calendar-day fields (LastLoginDate, DailyBonusClaimedDate, LastSpinDate,
// LastScratchDate) hold YYYY-MM-DD strings and drive the lazy daily resets.
type User struct {
	ID                    string    `db:"id" json:"id"`
	Identity              string    `db:"identity" json:"identity"`
	Points                int64     `db:"points" json:"points"`
	ReferralCode          string    `db:"referral_code" json:"referralCode"`
	ReferredBy            *string   `db:"referred_by" json:"referredBy,omitempty"`
	LastLoginDate         string    `db:"last_login_date" json:"lastLoginDate"`
	DailyStreak           int       `db:"daily_streak" json:"dailyStreak"`
	DailyBonusClaimedDate string    `db:"daily_bonus_claimed_date" json:"dailyBonusClaimedDate"`
	SpinsToday            int       `db:"spins_today" json:"spinsToday"`
	LastSpinDate          string    `db:"last_spin_date" json:"lastSpinDate"`
	ScratchesToday        int       `db:"scratches_today" json:"scratchesToday"`
	LastScratchDate       string    `db:"last_scratch_date" json:"lastScratchDate"`
	IsAdmin               bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// WithdrawRequest represents a single cash-out submission.
// Points are deducted when the request is created; a rejection refunds them.
type WithdrawRequest struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	UserIdentity string    `db:"user_identity" json:"userIdentity"`
	AmountPoints int64     `db:"amount_points" json:"amountPoints"`
	AmountPkr    float64   `db:"amount_pkr" json:"amountPkr"`
	Method       string    `db:"method" json:"method"`
	Details      string    `db:"details" json:"details"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"date"`
}

// Transaction records a single points mutation on a user's ledger.
type Transaction struct {
	ID           int64     `db:"id" json:"id"`
	UserIdentity string    `db:"user_identity" json:"userIdentity"`
	Amount       int64     `db:"amount" json:"amount"`
	Type         string    `db:"type" json:"type"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Withdrawal request statuses.
const (
	WithdrawStatusPending  = "pending"
	WithdrawStatusApproved = "approved"
	WithdrawStatusRejected = "rejected"
)

// Supported payout methods.
const (
	MethodEasypaisa = "Easypaisa"
	MethodJazzcash  = "Jazzcash"
	MethodBinance   = "Binance"
)

// WithdrawMethods lists the accepted payout methods.
func WithdrawMethods() []string {
	return []string{MethodEasypaisa, MethodJazzcash, MethodBinance}
}

// IsValidMethod reports whether m is an accepted payout method.
func IsValidMethod(m string) bool {
	for _, v := range WithdrawMethods() {
		if v == m {
			return true
		}
	}
	return false
}

// Transaction types for categorizing points changes.
const (
	TxTypeWelcome        = "welcome"         // Signup welcome bonus
	TxTypeDailyBonus     = "daily_bonus"     // Daily streak bonus claim
	TxTypeWheel          = "wheel"           // Spin wheel win
	TxTypeSlot           = "slot"            // Slot machine win
	TxTypeScratch        = "scratch"         // Scratch card prize
	TxTypeReferralBonus  = "referral_bonus"  // Referrer credit
	TxTypeOracle         = "oracle"          // Oracle consultation cost
	TxTypeWithdraw       = "withdraw"        // Withdrawal deduction
	TxTypeWithdrawRefund = "withdraw_refund" // Refund of a rejected withdrawal
	TxTypeAdjustment     = "adjustment"      // Unclassified caller-driven delta
)
