package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/repository/dao"
)

var (
	ErrCredentialNotFound = dao.ErrCredentialNotFound
)

type CredentialDAO interface {
	Find(ctx context.Context) (dao.Credential, error)
	Save(ctx context.Context, credential dao.Credential) (dao.Credential, error)
	Delete(ctx context.Context) error
}

type CredentialRepository struct {
	dao CredentialDAO
}

func NewCredentialRepository(dao CredentialDAO) *CredentialRepository {
	return &CredentialRepository{
		dao: dao,
	}
}

func (r *CredentialRepository) Load(ctx context.Context) (domain.Credential, error) {
	found, err := r.dao.Find(ctx)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return r.daoToDomain(found)
}

func (r *CredentialRepository) Save(ctx context.Context, credential domain.Credential) error {
	row, err := r.domainToDao(credential)
	if err != nil {
		return err
	}

	if _, err = r.dao.Save(ctx, row); err != nil {
		return fmt.Errorf("r.dao.Save -> %w", err)
	}

	return nil
}

func (r *CredentialRepository) Clear(ctx context.Context) error {
	if err := r.dao.Delete(ctx); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *CredentialRepository) daoToDomain(c dao.Credential) (domain.Credential, error) {
	credential := domain.Credential{
		Tokens: domain.Tokens{
			AccessToken:  c.AccessToken,
			RefreshToken: c.RefreshToken,
		},
		ConsoleToken: c.ConsoleToken,
	}

	if len(c.Profile) > 0 && string(c.Profile) != "null" {
		var user domain.User
		if err := json.Unmarshal(c.Profile, &user); err != nil {
			return domain.Credential{}, fmt.Errorf("json.Unmarshal profile -> %w", err)
		}
		credential.User = &user
	}

	return credential, nil
}

func (r *CredentialRepository) domainToDao(c domain.Credential) (dao.Credential, error) {
	row := dao.Credential{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ConsoleToken: c.ConsoleToken,
	}

	if c.User != nil {
		profile, err := json.Marshal(c.User)
		if err != nil {
			return dao.Credential{}, fmt.Errorf("json.Marshal profile -> %w", err)
		}
		row.Profile = datatypes.JSON(profile)
	}

	return row, nil
}
