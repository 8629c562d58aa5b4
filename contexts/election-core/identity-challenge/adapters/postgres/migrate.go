package postgresadapter

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&policyModel{}, &challengeModel{})
}
