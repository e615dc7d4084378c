package clicks

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Insert persists one click record.
func Insert(dbManager cartridge.DBManager, logger *slog.Logger, click *Click) error {
	db := dbManager.GetConnection()
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(click).Error
	})
}

// QueryByShortCode returns all clicks for a short code, oldest first.
func QueryByShortCode(dbManager cartridge.DBManager, code string) ([]Click, error) {
	var result []Click
	err := dbManager.GetConnection().
		Where("short_code = ?", code).
		Order("clicked_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryByLinkID returns all clicks for a link id, oldest first.
func QueryByLinkID(dbManager cartridge.DBManager, linkID uint) ([]Click, error) {
	var result []Click
	err := dbManager.GetConnection().
		Where("link_id = ?", linkID).
		Order("clicked_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOlderThan removes clicks recorded before cutoff in batches, so the
// retention job never holds a long write transaction. Returns the total
// number of rows removed.
func DeleteOlderThan(dbManager cartridge.DBManager, logger *slog.Logger, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	db := dbManager.GetConnection()
	var total int64
	for {
		var affected int64
		err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
			result := tx.Exec(
				"DELETE FROM clicks WHERE id IN (SELECT id FROM clicks WHERE clicked_at < ? LIMIT ?)",
				cutoff, batchSize,
			)
			affected = result.RowsAffected
			return result.Error
		})
		if err != nil {
			return total, err
		}
		total += affected
		if affected < int64(batchSize) {
			return total, nil
		}
	}
}
