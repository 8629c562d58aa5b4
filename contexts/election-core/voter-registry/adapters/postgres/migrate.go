package postgresadapter

import "gorm.io/gorm"

// Migrate creates the registry table. The partial unique indexes on
// (organization_id, matric_number|email|phone) are load-bearing for
// enrollment correctness, not an optimization.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entryModel{})
}
