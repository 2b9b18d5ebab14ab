// Package domain holds the reward rules: daily streaks, the prize
// wheel, quests and CASA mining sessions.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrSpinUnavailable means the user has no spin to use.
	ErrSpinUnavailable = errors.New("no spin available")

	// ErrQuestNotComplete means the quest target has not been reached.
	ErrQuestNotComplete = errors.New("quest not complete")

	// ErrQuestAlreadyClaimed means the reward was already collected.
	ErrQuestAlreadyClaimed = errors.New("quest already claimed")

	// ErrUnknownQuest means the quest id is not defined.
	ErrUnknownQuest = errors.New("unknown quest")

	// ErrMiningActive means a mining session is already running.
	ErrMiningActive = errors.New("mining session already active")

	// ErrMiningNotReady means the current session has not finished.
	ErrMiningNotReady = errors.New("mining session not finished")

	// ErrNoMiningSession means there is nothing to claim.
	ErrNoMiningSession = errors.New("no mining session")
)

// Streak timing windows, in milliseconds since the last check-in.
const (
	StreakSameDayWindow = 24 * int64(time.Hour/time.Millisecond)
	StreakGraceWindow   = 48 * int64(time.Hour/time.Millisecond)
)

// Streak reward parameters.
const (
	StreakBaseReward       = 3.4
	StreakWeekMultiplier   = 2
	StreakMonthMultiplier  = 3
	StreakWeekThreshold    = 7
	StreakMonthThreshold   = 30
)

// Mining session parameters.
const (
	MiningSessionDuration = 24 * time.Hour
	MiningReward          = 3.14
)

// SpinPrize is one slot of the prize wheel.
type SpinPrize struct {
	Points int
	Weight int // percent share of the wheel
}

// SpinTable is the wheel, ordered for cumulative-weight selection.
// Weights sum to 100.
var SpinTable = []SpinPrize{
	{Points: 1, Weight: 30},
	{Points: 3, Weight: 25},
	{Points: 5, Weight: 20},
	{Points: 10, Weight: 15},
	{Points: 20, Weight: 7},
	{Points: 50, Weight: 2},
	{Points: 100, Weight: 1},
}

// QuestPeriod distinguishes the reset cadence of a quest.
type QuestPeriod string

const (
	PeriodDaily  QuestPeriod = "daily"
	PeriodWeekly QuestPeriod = "weekly"
)

// Quest defines a repeatable task tied to a progress counter.
type Quest struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Counter string      `json:"-"`
	Target  int64       `json:"target"`
	Reward  int         `json:"reward"`
	Period  QuestPeriod `json:"period"`
}

// Quests is the active quest catalogue, keyed by quest id.
var Quests = map[string]Quest{
	"view_properties": {
		ID: "view_properties", Title: "View 5 properties",
		Counter: "propertiesViewed", Target: 5, Reward: 5, Period: PeriodDaily,
	},
	"view_services": {
		ID: "view_services", Title: "Browse 3 services",
		Counter: "servicesViewed", Target: 3, Reward: 3, Period: PeriodDaily,
	},
	"send_message": {
		ID: "send_message", Title: "Send 2 messages",
		Counter: "messagesSent", Target: 2, Reward: 4, Period: PeriodDaily,
	},
	"favorite_property": {
		ID: "favorite_property", Title: "Favorite 3 properties",
		Counter: "favoritesAdded", Target: 3, Reward: 3, Period: PeriodDaily,
	},
	"create_listing": {
		ID: "create_listing", Title: "Create a listing",
		Counter: "listingsCreated", Target: 1, Reward: 20, Period: PeriodWeekly,
	},
	"leave_review": {
		ID: "leave_review", Title: "Leave 2 reviews",
		Counter: "reviewsLeft", Target: 2, Reward: 15, Period: PeriodWeekly,
	},
	"complete_transaction": {
		ID: "complete_transaction", Title: "Complete a transaction",
		Counter: "transactionsCompleted", Target: 1, Reward: 50, Period: PeriodWeekly,
	},
}

// QuestStatus is a quest with the user's current progress.
type QuestStatus struct {
	Quest
	Progress int64 `json:"progress"`
	Complete bool  `json:"complete"`
	Claimed  bool  `json:"claimed"`
}

// CheckInResult summarizes a streak check-in.
type CheckInResult struct {
	Streak        int     `json:"streak"`
	LongestStreak int     `json:"longestStreak"`
	Reward        float64 `json:"reward"`
	SpinAwarded   bool    `json:"spinAwarded"`
	AlreadyDone   bool    `json:"alreadyDone"`
}

// SpinResult is the outcome of one wheel spin.
type SpinResult struct {
	Points int `json:"points"`
	Total  int `json:"total"`
}

// MiningStatus describes the user's current mining session.
type MiningStatus struct {
	Active       bool    `json:"active"`
	SessionEnd   int64   `json:"sessionEnd,omitempty"`
	Claimable    bool    `json:"claimable"`
	Reward       float64 `json:"reward"`
	LastClaimed  int64   `json:"lastClaimed,omitempty"`
	RemainingMs  int64   `json:"remainingMs"`
}
