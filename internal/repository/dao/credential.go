package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCredentialNotFound = errors.New("credential not found")

// The console signs in one operator at a time, so credentials live in a single row.
const credentialRowID = 1

type Credential struct {
	ID           uint `gorm:"primaryKey;autoIncrement:false"`
	AccessToken  string
	RefreshToken string
	Profile      datatypes.JSON
	ConsoleToken string
	UpdatedAt    time.Time
}

type CredentialDAO struct {
	db *gorm.DB
}

func NewCredentialDAO(db *gorm.DB) *CredentialDAO {
	return &CredentialDAO{
		db: db,
	}
}

func (d *CredentialDAO) Find(ctx context.Context) (Credential, error) {
	var credential Credential

	result := d.db.WithContext(ctx).First(&credential, credentialRowID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Credential{}, ErrCredentialNotFound
		}

		return Credential{}, result.Error
	}

	return credential, nil
}

func (d *CredentialDAO) Save(ctx context.Context, credential Credential) (Credential, error) {
	credential.ID = credentialRowID

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "profile", "console_token", "updated_at"}),
	}).Create(&credential)
	if result.Error != nil {
		return Credential{}, result.Error
	}

	return credential, nil
}

func (d *CredentialDAO) Delete(ctx context.Context) error {
	return d.db.WithContext(ctx).Delete(&Credential{}, credentialRowID).Error
}
