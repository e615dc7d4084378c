// Package testsupport provides shared helpers for package tests: in-memory
// databases with the full schema, loggers, and record factories.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"linkpulse/internal/clicks"
	"linkpulse/internal/links"
)

// testDBCache caches test databases by root test name so setup helpers and
// subtests share one database.
var (
	testDBCache   = make(map[string]*gorm.DB)
	testDBCacheMu sync.Mutex
)

// TestDBManager wraps cartridge's TestDBManager behind linkpulse's
// interface.
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements
// cartridge.DBManager.
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

var _ cartridge.DBManager = (*TestDBManager)(nil)

func allModels() []any {
	return []any{
		&links.Link{},
		&clicks.Click{},
	}
}

// SetupTestDB creates a migrated in-memory test database. Uses a named
// database with cache=shared so multiple connections within one test see
// the same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	rootName := t.Name()
	if idx := strings.Index(rootName, "/"); idx > 0 {
		rootName = rootName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a migrated test database manager.
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	t.Helper()
	return NewTestDBManager(SetupTestDB(t)), GetLogger()
}

// GetLogger returns a quiet test logger.
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestLink inserts a link with the given code and target.
func CreateTestLink(t *testing.T, db *gorm.DB, code, target string) *links.Link {
	t.Helper()

	link := &links.Link{
		ShortCode: code,
		TargetURL: target,
		Domain:    "example.com",
		IsActive:  true,
	}
	require.NoError(t, db.Create(link).Error)
	return link
}

// CreateTestClick inserts a click for a link with sensible defaults,
// optionally mutated by the caller.
func CreateTestClick(t *testing.T, db *gorm.DB, link *links.Link, mutate func(c *clicks.Click)) *clicks.Click {
	t.Helper()

	click := &clicks.Click{
		LinkID:       link.ID,
		ShortCode:    link.ShortCode,
		IPAddress:    "203.0.113.10",
		UserAgent:    "Mozilla/5.0 Test Browser",
		DeviceType:   "desktop",
		Browser:      "Chrome",
		OS:           "Windows",
		Platform:     "Windows 10",
		CountryCode:  "US",
		CountryName:  "United States",
		ReferrerType: clicks.DirectReferrer,
		SessionID:    "cafe000011112222",
		ClickedAt:    time.Now().UTC(),
	}
	if mutate != nil {
		mutate(click)
	}
	require.NoError(t, db.Create(click).Error)
	return click
}
