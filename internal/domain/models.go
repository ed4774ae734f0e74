package domain

import (
	"time"
)

// DealStage represents the lifecycle stage of a deal
type DealStage string

const (
	DealStageProspecting DealStage = "Prospecting"
	DealStageNegotiation DealStage = "Negotiation"
	DealStageClosedWon   DealStage = "Closed Won"
	DealStageClosedLost  DealStage = "Closed Lost"
)

// OpenStages are the stages that count toward the pipeline
var OpenStages = []DealStage{DealStageProspecting, DealStageNegotiation}

// ClosedStages are the terminal stages used for win-rate computations
var ClosedStages = []DealStage{DealStageClosedWon, DealStageClosedLost}

// IsOpen reports whether the stage counts as an open (pipeline) stage
func (s DealStage) IsOpen() bool {
	return s == DealStageProspecting || s == DealStageNegotiation
}

// IsClosed reports whether the stage is terminal
func (s DealStage) IsClosed() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// AccountSegment represents the categorical tier of an account
type AccountSegment string

const (
	SegmentEnterprise AccountSegment = "Enterprise"
	SegmentMidMarket  AccountSegment = "Mid-Market"
	SegmentSMB        AccountSegment = "SMB"
)

// Account is a customer account in the sales dataset
type Account struct {
	AccountID string         `gorm:"column:account_id;primaryKey" json:"account_id"`
	Name      string         `gorm:"column:name" json:"name"`
	Industry  string         `gorm:"column:industry" json:"industry"`
	Segment   AccountSegment `gorm:"column:segment;index" json:"segment"`
}

func (Account) TableName() string { return "accounts" }

// Rep is a sales representative
type Rep struct {
	RepID string `gorm:"column:rep_id;primaryKey" json:"rep_id"`
	Name  string `gorm:"column:name" json:"name"`
}

func (Rep) TableName() string { return "reps" }

// Deal is a sales opportunity. Amount is nullable; a nil amount counts as 0
// in revenue sums but is excluded from average-deal-size computations.
// ClosedAt is expected to be set for closed stages, but the engine tolerates
// rows where that does not hold; such rows fall out of date-ranged
// aggregates.
type Deal struct {
	DealID    string     `gorm:"column:deal_id;primaryKey" json:"deal_id"`
	AccountID string     `gorm:"column:account_id;index" json:"account_id"`
	RepID     string     `gorm:"column:rep_id;index" json:"rep_id"`
	Stage     DealStage  `gorm:"column:stage;index" json:"stage"`
	Amount    *float64   `gorm:"column:amount" json:"amount"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at;index" json:"closed_at"`
}

func (Deal) TableName() string { return "deals" }

// Activity is a single touch (call, email, meeting) logged against a deal
type Activity struct {
	ActivityID string    `gorm:"column:activity_id;primaryKey" json:"activity_id"`
	DealID     string    `gorm:"column:deal_id;index" json:"deal_id"`
	Type       string    `gorm:"column:type" json:"type"`
	Timestamp  time.Time `gorm:"column:timestamp;index" json:"timestamp"`
}

func (Activity) TableName() string { return "activities" }

// Target is the revenue target for one calendar month, keyed "YYYY-MM"
type Target struct {
	Month  string  `gorm:"column:month;primaryKey" json:"month"`
	Target float64 `gorm:"column:target" json:"target"`
}

func (Target) TableName() string { return "targets" }
