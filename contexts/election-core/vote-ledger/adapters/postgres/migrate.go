package postgresadapter

import "gorm.io/gorm"

// Migrate creates the votes table. The unique index on
// (election_id, voter_registry_id) is load-bearing: it is what turns two
// simultaneous casts for the same voter into one success and one conflict.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&voteModel{})
}
