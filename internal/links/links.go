// Package links manages short links: creation with unique code generation,
// lookup, redirect eligibility, and click counters.
package links

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"linkpulse/internal/shortcode"
)

var (
	ErrInvalidURL  = errors.New("links: target URL must be absolute http or https")
	ErrInvalidCode = errors.New("links: short code must be 4-8 base62 characters")
	ErrCodeTaken   = errors.New("links: short code already in use")
	ErrNotFound    = errors.New("links: short code not found")
)

// Link is a short code pointing at a target URL. Links are soft-deleted by
// clearing IsActive; rows are never removed so analytics stay attributable.
type Link struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ShortCode     string `gorm:"uniqueIndex;size:8;not null"`
	TargetURL     string `gorm:"not null"`
	Title         string
	Domain        string `gorm:"index"`
	IsActive      bool   `gorm:"index;not null;default:true"`
	ClickCount    int64  `gorm:"not null;default:0"`
	LastClickedAt *time.Time
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the link's expiry time has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// CanRedirect reports whether a redirect may be served for this link.
func (l *Link) CanRedirect(now time.Time) bool {
	return l.IsActive && !l.Expired(now)
}

// CreateLinkInput defines the input required to create a link.
type CreateLinkInput struct {
	TargetURL  string
	Title      string
	CustomCode string
	CodeLength int
	ExpiresAt  *time.Time
}

// createAttempts bounds retries when a generated code loses the race
// against a concurrent insert. The generator's local issued-set makes
// repeats rare; the unique index is the final authority.
const createAttempts = 3

// CreateLink validates the input, generates or claims a short code, and
// persists the link.
func CreateLink(dbManager cartridge.DBManager, logger *slog.Logger, gen *shortcode.Generator, input *CreateLinkInput) (*Link, error) {
	domain, err := deriveDomain(input.TargetURL)
	if err != nil {
		return nil, err
	}

	db := dbManager.GetConnection()

	if input.CustomCode != "" {
		if !shortcode.Validate(input.CustomCode) {
			return nil, ErrInvalidCode
		}
		if taken, err := codeExists(db, input.CustomCode); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrCodeTaken
		}
		return insertLink(logger, db, input, input.CustomCode, domain)
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := gen.Generate(input.TargetURL, input.CodeLength)
		if err != nil {
			return nil, err
		}

		if taken, err := codeExists(db, code); err != nil {
			return nil, err
		} else if taken {
			continue
		}

		link, err := insertLink(logger, db, input, code, domain)
		if err != nil {
			// A concurrent insert can still win the race; try a new code.
			logger.Warn("short code insert collided, retrying",
				slog.String("code", code), slog.Any("error", err))
			continue
		}
		return link, nil
	}

	return nil, fmt.Errorf("links: could not persist a unique short code after %d attempts", createAttempts)
}

func insertLink(logger *slog.Logger, db *gorm.DB, input *CreateLinkInput, code, domain string) (*Link, error) {
	link := &Link{
		ShortCode: code,
		TargetURL: input.TargetURL,
		Title:     input.Title,
		Domain:    domain,
		IsActive:  true,
		ExpiresAt: input.ExpiresAt,
	}
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(link).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}
	return link, nil
}

// isUniqueViolation reports whether err is the unique index on short_code
// rejecting an insert. The string check covers sqlite drivers that don't
// translate to gorm's sentinel.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func codeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	if err := db.Model(&Link{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByShortCode fetches a link by code, active or not. Malformed codes are
// reported as not found, never as a server error.
func GetByShortCode(dbManager cartridge.DBManager, code string) (*Link, error) {
	if !shortcode.Validate(code) {
		return nil, ErrNotFound
	}

	var link Link
	err := dbManager.GetConnection().Where("short_code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// RecordClick bumps the click counter and last-click time for a link.
func RecordClick(dbManager cartridge.DBManager, logger *slog.Logger, linkID uint, ts time.Time) error {
	db := dbManager.GetConnection()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(&Link{}).Where("id = ?", linkID).Updates(map[string]interface{}{
			"click_count":     gorm.Expr("click_count + 1"),
			"last_clicked_at": ts,
		}).Error
	})
}

// Deactivate soft-deletes a link by clearing its active flag.
func Deactivate(dbManager cartridge.DBManager, logger *slog.Logger, linkID uint) error {
	db := dbManager.GetConnection()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Model(&Link{}).Where("id = ?", linkID).Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// deriveDomain extracts the lowercased host from the target URL, stripping
// a leading www.
func deriveDomain(target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", ErrInvalidURL
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", ErrInvalidURL
	}
	domain := strings.ToLower(parsed.Hostname())
	domain = strings.TrimPrefix(domain, "www.")
	return domain, nil
}
