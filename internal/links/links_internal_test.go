package links

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB opens an in-memory database without the shared test harness,
// which lives a package above and depends on this one.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Link{}))
	return db
}

// A duplicate insert that slips past the pre-flight existence check must
// surface as ErrCodeTaken, not as a raw database error.
func TestInsertLinkDuplicateCodeIsCodeTaken(t *testing.T) {
	db := openTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	input := &CreateLinkInput{TargetURL: "https://example.com/page"}

	_, err := insertLink(logger, db, input, "xK9mPq", "example.com")
	require.NoError(t, err)

	_, err = insertLink(logger, db, input, "xK9mPq", "example.com")
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(gorm.ErrInvalidData))
}
