package links_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpulse/internal/links"
	"linkpulse/internal/shortcode"
	"linkpulse/internal/testsupport"
)

func TestCreateLink(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	gen := shortcode.NewGenerator(6, 10)

	t.Run("generates a code", func(t *testing.T) {
		link, err := links.CreateLink(dbManager, logger, gen, &links.CreateLinkInput{
			TargetURL: "https://www.example.com/articles/go-tips",
			Title:     "Go tips",
		})
		require.NoError(t, err)

		assert.True(t, shortcode.Validate(link.ShortCode))
		assert.Len(t, link.ShortCode, 6)
		assert.Equal(t, "example.com", link.Domain)
		assert.True(t, link.IsActive)
		assert.Zero(t, link.ClickCount)
		assert.NotZero(t, link.ID)
	})

	t.Run("custom code", func(t *testing.T) {
		link, err := links.CreateLink(dbManager, logger, gen, &links.CreateLinkInput{
			TargetURL:  "https://example.com/launch",
			CustomCode: "launch1",
		})
		require.NoError(t, err)
		assert.Equal(t, "launch1", link.ShortCode)
	})

	t.Run("custom code taken", func(t *testing.T) {
		_, err := links.CreateLink(dbManager, logger, gen, &links.CreateLinkInput{
			TargetURL:  "https://example.com/other",
			CustomCode: "launch1",
		})
		assert.ErrorIs(t, err, links.ErrCodeTaken)
	})

	t.Run("invalid custom code", func(t *testing.T) {
		_, err := links.CreateLink(dbManager, logger, gen, &links.CreateLinkInput{
			TargetURL:  "https://example.com/other",
			CustomCode: "has space!",
		})
		assert.ErrorIs(t, err, links.ErrInvalidCode)
	})

	t.Run("rejects bad target URLs", func(t *testing.T) {
		for _, target := range []string{"", "not a url at all \x7f", "ftp://example.com/file", "/relative/path"} {
			_, err := links.CreateLink(dbManager, logger, gen, &links.CreateLinkInput{TargetURL: target})
			assert.ErrorIs(t, err, links.ErrInvalidURL, "target %q", target)
		}
	})
}

func TestGetByShortCode(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	created := testsupport.CreateTestLink(t, dbManager.GetConnection(), "xK9mPq", "https://example.com")

	t.Run("found", func(t *testing.T) {
		link, err := links.GetByShortCode(dbManager, "xK9mPq")
		require.NoError(t, err)
		assert.Equal(t, created.ID, link.ID)
		assert.Equal(t, "https://example.com", link.TargetURL)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := links.GetByShortCode(dbManager, "zzZZ99")
		assert.ErrorIs(t, err, links.ErrNotFound)
	})

	t.Run("malformed code is not found, not an error", func(t *testing.T) {
		_, err := links.GetByShortCode(dbManager, "bad code; drop table")
		assert.ErrorIs(t, err, links.ErrNotFound)
	})
}

func TestRecordClick(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	link := testsupport.CreateTestLink(t, dbManager.GetConnection(), "aB3xY9", "https://example.com")

	ts := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	require.NoError(t, links.RecordClick(dbManager, logger, link.ID, ts))
	require.NoError(t, links.RecordClick(dbManager, logger, link.ID, ts.Add(time.Minute)))

	reloaded, err := links.GetByShortCode(dbManager, "aB3xY9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.ClickCount)
	require.NotNil(t, reloaded.LastClickedAt)
	assert.True(t, reloaded.LastClickedAt.Equal(ts.Add(time.Minute)))
}

func TestDeactivate(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	link := testsupport.CreateTestLink(t, dbManager.GetConnection(), "qW4eRt", "https://example.com")

	require.NoError(t, links.Deactivate(dbManager, logger, link.ID))

	reloaded, err := links.GetByShortCode(dbManager, "qW4eRt")
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
	assert.False(t, reloaded.CanRedirect(time.Now().UTC()))

	assert.ErrorIs(t, links.Deactivate(dbManager, logger, 99999), links.ErrNotFound)
}

func TestCanRedirect(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link links.Link
		want bool
	}{
		{"active without expiry", links.Link{IsActive: true}, true},
		{"active not yet expired", links.Link{IsActive: true, ExpiresAt: &future}, true},
		{"expired", links.Link{IsActive: true, ExpiresAt: &past}, false},
		{"inactive", links.Link{IsActive: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.CanRedirect(now))
		})
	}
}
