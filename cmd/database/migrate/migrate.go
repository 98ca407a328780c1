package migration

import (
	"fmt"
	"log"

	"github.com/b1gw1z/frn-backend/entities"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Donation{}); err != nil {
		log.Fatalf("Error migrating donation database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Claim{}); err != nil {
		log.Fatalf("Error migrating claim database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ActivityLog{}); err != nil {
		log.Fatalf("Error migrating activity log database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
