package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/pipemetric/insight-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// insertBatchSize keeps the bulk inserts under sqlite's bind-variable limit
const insertBatchSize = 500

// Loader populates the dataset store from the five JSON files of a dataset
// source. The dataset is loaded once at startup and then only read.
type Loader struct {
	db     *gorm.DB
	source storage.Source
	logger *zap.Logger
}

func NewLoader(db *gorm.DB, source storage.Source, logger *zap.Logger) *Loader {
	return &Loader{db: db, source: source, logger: logger}
}

// flexTime accepts both plain dates ("2006-01-02") and RFC 3339 timestamps,
// normalized to UTC. Seed exports use plain dates for deals and timestamps
// for activities.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized date format: %q", s)
}

type rawDeal struct {
	DealID    string    `json:"deal_id"`
	AccountID string    `json:"account_id"`
	RepID     string    `json:"rep_id"`
	Stage     string    `json:"stage"`
	Amount    *float64  `json:"amount"`
	CreatedAt flexTime  `json:"created_at"`
	ClosedAt  *flexTime `json:"closed_at"`
}

type rawActivity struct {
	ActivityID string   `json:"activity_id"`
	DealID     string   `json:"deal_id"`
	Type       string   `json:"type"`
	Timestamp  flexTime `json:"timestamp"`
}

// Load reads all five dataset files and bulk-inserts them inside one
// transaction, so a malformed file leaves the store empty rather than
// half-populated
func (l *Loader) Load(ctx context.Context) error {
	var (
		accounts   []domain.Account
		reps       []domain.Rep
		deals      []rawDeal
		activities []rawActivity
		targets    []domain.Target
	)

	if err := l.decodeFile(ctx, "accounts.json", &accounts); err != nil {
		return err
	}
	if err := l.decodeFile(ctx, "reps.json", &reps); err != nil {
		return err
	}
	if err := l.decodeFile(ctx, "deals.json", &deals); err != nil {
		return err
	}
	if err := l.decodeFile(ctx, "activities.json", &activities); err != nil {
		return err
	}
	if err := l.decodeFile(ctx, "targets.json", &targets); err != nil {
		return err
	}

	dealRows := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		row := domain.Deal{
			DealID:    d.DealID,
			AccountID: d.AccountID,
			RepID:     d.RepID,
			Stage:     domain.DealStage(d.Stage),
			Amount:    d.Amount,
			CreatedAt: d.CreatedAt.Time,
		}
		if d.ClosedAt != nil && !d.ClosedAt.IsZero() {
			closedAt := d.ClosedAt.Time
			row.ClosedAt = &closedAt
		}
		dealRows = append(dealRows, row)
	}

	activityRows := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		activityRows = append(activityRows, domain.Activity{
			ActivityID: a.ActivityID,
			DealID:     a.DealID,
			Type:       a.Type,
			Timestamp:  a.Timestamp.Time,
		})
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(accounts) > 0 {
			if err := tx.CreateInBatches(accounts, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert accounts: %w", err)
			}
		}
		if len(reps) > 0 {
			if err := tx.CreateInBatches(reps, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert reps: %w", err)
			}
		}
		if len(dealRows) > 0 {
			if err := tx.CreateInBatches(dealRows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert deals: %w", err)
			}
		}
		if len(activityRows) > 0 {
			if err := tx.CreateInBatches(activityRows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert activities: %w", err)
			}
		}
		if len(targets) > 0 {
			if err := tx.CreateInBatches(targets, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert targets: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("Dataset loaded",
		zap.Int("accounts", len(accounts)),
		zap.Int("reps", len(reps)),
		zap.Int("deals", len(dealRows)),
		zap.Int("activities", len(activityRows)),
		zap.Int("targets", len(targets)),
	)
	return nil
}

func (l *Loader) decodeFile(ctx context.Context, name string, out interface{}) error {
	reader, err := l.source.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatasetNotLoaded, err)
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}
