package domain

// Summary is the quarter-to-date revenue position against target.
// ChangePercent is nil when the previous quarter had no revenue, which
// distinguishes "no comparable baseline" from an actual 0% change.
type Summary struct {
	CurrentQuarterRevenue float64  `json:"currentQuarterRevenue"`
	Target                float64  `json:"target"`
	GapPercent            float64  `json:"gapPercent"`
	ChangePercent         *float64 `json:"changePercent"`
	ChangeType            string   `json:"changeType"`
	QuarterLabel          string   `json:"quarterLabel"`
}

// Drivers holds the current-quarter KPI values and their quarter-over-quarter
// deltas. Pipeline size is point-in-time and therefore carries no real delta.
// The nullable deltas are nil when the previous quarter offers no baseline.
type Drivers struct {
	PipelineSize          float64  `json:"pipelineSize"`
	WinRatePercent        float64  `json:"winRatePercent"`
	AverageDealSize       float64  `json:"averageDealSize"`
	SalesCycleDays        int      `json:"salesCycleDays"`
	PipelineChangePercent float64  `json:"pipelineChangePercent"`
	WinRateChangePercent  *float64 `json:"winRateChangePercent"`
	AvgDealChangePercent  *float64 `json:"avgDealChangePercent"`
	SalesCycleChangeDays  int      `json:"salesCycleChangeDays"`
}

// StaleDeal is an open deal with no recent activity
type StaleDeal struct {
	DealID            string   `json:"deal_id"`
	AccountID         string   `json:"account_id"`
	RepID             string   `json:"rep_id"`
	RepName           string   `json:"rep_name"`
	Amount            *float64 `json:"amount"`
	DaysSinceActivity int      `json:"days_since_activity"`
}

// UnderperformingRep is a rep whose quarter win rate sits below the scaled
// team average
type UnderperformingRep struct {
	RepID          string  `json:"rep_id"`
	Name           string  `json:"name"`
	WinRatePercent float64 `json:"winRatePercent"`
	TeamAvgPercent float64 `json:"teamAvgPercent"`
}

// LowActivityAccount is an account with open deals but too few recent touches
type LowActivityAccount struct {
	AccountID     string         `json:"account_id"`
	Name          string         `json:"name"`
	Segment       AccountSegment `json:"segment"`
	ActivityCount int            `json:"activity_count"`
}

// RiskFactors aggregates the three independent risk signals
type RiskFactors struct {
	StaleDeals          []StaleDeal          `json:"staleDeals"`
	UnderperformingReps []UnderperformingRep `json:"underperformingReps"`
	LowActivityAccounts []LowActivityAccount `json:"lowActivityAccounts"`
}

// Recommendation is a single prioritized action; only the text is exposed
type Recommendation struct {
	Text string `json:"text"`
}

// Recommendations is the ranked, truncated recommendation list
type Recommendations struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// RevenueTrend is the trailing 6-calendar-month revenue/target series,
// oldest month first. The four slices are parallel and always length 6.
type RevenueTrend struct {
	Labels  []string  `json:"labels"`
	Months  []string  `json:"months"`
	Revenue []float64 `json:"revenue"`
	Target  []float64 `json:"target"`
}

// Error response types, shared by the handlers
const (
	ErrorTypeBadRequest = "https://insight-api.pipemetric.com/errors/bad-request"
	ErrorTypeNotFound   = "https://insight-api.pipemetric.com/errors/not-found"
	ErrorTypeInternal   = "https://insight-api.pipemetric.com/errors/internal"
)

// APIError is the standard JSON error body (RFC 7807 shape)
type APIError struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}
