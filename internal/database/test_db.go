package database

import (
	"fmt"
	"sync/atomic"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var testDBSeq int64

// OpenTest returns a fresh in-memory database. Each call uses a uniquely
// named shared-cache DSN so gorm's connection pool sees one database per
// test instead of one per connection.
func OpenTest() *gorm.DB {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RedeemCode{},
		&model.Copy{},
		&model.Suspension{},
		&model.MisuseLog{},
	)
	if err != nil {
		panic("failed to migrate test database")
	}

	return db
}

// CleanTest closes the underlying connection of a test database.
func CleanTest(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
