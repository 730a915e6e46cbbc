// Package persistence provides the GORM-backed split catalog.
package persistence

import (
	"fmt"

	"github.com/helixml/splitmerge/internal/database"
)

// AutoMigrate creates or updates the catalog schema.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&SplitModel{}); err != nil {
		return fmt.Errorf("migrate catalog: %w", err)
	}
	return nil
}
