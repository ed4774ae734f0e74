package service_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pipemetric/insight-api/internal/config"
	"github.com/pipemetric/insight-api/internal/database"
	"github.com/pipemetric/insight-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a test-scoped in-memory sqlite database. The DSN is keyed
// by test name so parallel tests never share state, and cache=shared keeps
// the database alive across the pool's connections.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// testAnalytics mirrors the default analytics configuration with a fixed
// anchor date so every assertion is deterministic
func testAnalytics() *config.AnalyticsConfig {
	return &config.AnalyticsConfig{
		AsOfDate:                        "2025-02-10",
		StaleDays:                       30,
		LowActivityThreshold:            2,
		UnderperformingWinRateThreshold: 0.8,
	}
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func fptr(v float64) *float64 { return &v }

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	require.NoError(t, db.Create(value).Error)
}

func seedAccount(t *testing.T, db *gorm.DB, id, name string, segment domain.AccountSegment) {
	t.Helper()
	mustCreate(t, db, &domain.Account{AccountID: id, Name: name, Industry: "Software", Segment: segment})
}

func seedRep(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	mustCreate(t, db, &domain.Rep{RepID: id, Name: name})
}

func seedActivity(t *testing.T, db *gorm.DB, id, dealID, ts string) {
	t.Helper()
	mustCreate(t, db, &domain.Activity{ActivityID: id, DealID: dealID, Type: "call", Timestamp: day(ts)})
}
