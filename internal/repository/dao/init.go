package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&Assignment{},
	)
}

// dropAllTables is used by the integration tests to start from an empty schema.
func dropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(&Assignment{}, &Event{})
}
