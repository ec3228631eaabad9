package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vashudha/ghee-storefront/pkg/db/models"
	pkgerrors "github.com/vashudha/ghee-storefront/pkg/errors"
	"github.com/vashudha/ghee-storefront/pkg/types"
)

const maxAddressesPerUser = 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's saved address book. A user has at most one
// default address; the first saved address becomes the default.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

// Input is the write payload for creating or replacing an address.
type Input struct {
	Address   types.Address `json:"address"`
	IsDefault bool          `json:"is_default"`
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the address book service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	row, err := s.repo.FindByID(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return row, nil
}

// Create saves a new address. The first entry in an empty book always
// becomes the default regardless of the input flag.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error) {
	if err := input.Address.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
	}
	if count >= maxAddressesPerUser {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address book is full")
	}

	addr := toModel(userID, input.Address)
	addr.IsDefault = input.IsDefault || count == 0

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if addr.IsDefault {
			if err := txRepo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		_, err := txRepo.Create(ctx, addr)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	return addr, nil
}

// Update replaces the address fields, keeping ownership and identity.
func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error) {
	if err := input.Address.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	existing, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	updated := toModel(userID, input.Address)
	updated.ID = existing.ID
	updated.IsDefault = existing.IsDefault || input.IsDefault
	updated.CreatedAt = existing.CreatedAt

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if updated.IsDefault && !existing.IsDefault {
			if err := txRepo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		_, err := txRepo.Update(ctx, updated)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return updated, nil
}

// Delete removes the address. When the default entry is removed, the most
// recently created remaining address is promoted.
func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	existing, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Delete(ctx, userID, addressID); err != nil {
			return err
		}
		if !existing.IsDefault {
			return nil
		}
		remaining, err := txRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		promoted := remaining[0]
		promoted.IsDefault = true
		_, err = txRepo.Update(ctx, &promoted)
		return err
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// SetDefault atomically moves the default flag to the given address.
func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	existing, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if existing.IsDefault {
		return existing, nil
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		existing.IsDefault = true
		_, err := txRepo.Update(ctx, existing)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default address")
	}
	return existing, nil
}

func toModel(userID uuid.UUID, a types.Address) *models.Address {
	country := a.Country
	if country == "" {
		country = "IN"
	}
	return &models.Address{
		UserID:     userID,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    country,
	}
}

// Snapshot projects a saved row back into the embeddable address value
// used on orders.
func Snapshot(addr *models.Address) types.Address {
	return types.Address{
		FullName:   addr.FullName,
		Phone:      addr.Phone,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}
