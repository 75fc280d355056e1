package database

import (
	"os"
	"path/filepath"

	"github.com/Surya-Mathivanan/Redeem-app/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Open creates the data directory if needed, opens the sqlite database
// and migrates the schema. The returned handle is passed to every
// component explicitly; there is no package-level connection.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RedeemCode{},
		&model.Copy{},
		&model.Suspension{},
		&model.MisuseLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
