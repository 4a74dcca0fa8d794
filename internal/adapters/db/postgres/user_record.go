package postgres

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRecord is the persistence shape of model.User.
type userRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Company      string
	Role         string    `gorm:"not null;default:USER"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func toRecord(u model.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Company:      u.Company,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Company:      r.Company,
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// AutoMigrate creates the users table from the record definition. Production
// schemas come from the SQL migrations; this serves embedded databases.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{})
}
