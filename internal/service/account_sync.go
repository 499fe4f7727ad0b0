package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rongwang/nailpos-server/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// EnsureBootstrapAdmin adds the configured administrator to an otherwise
// empty roster so the first login is possible. The start-up sweep gives it
// an account.
func (s *DefaultService) EnsureBootstrapAdmin(ctx context.Context) error {
	email := strings.TrimSpace(s.bootstrapEmail)
	if email == "" {
		return nil
	}

	existing, err := s.repo.GetSalesPersonByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error looking up bootstrap admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	sp := &models.SalesPerson{Name: s.bootstrapName, Email: email, Role: models.RoleAdmin}
	if err := s.repo.CreateSalesPerson(ctx, sp); err != nil {
		return fmt.Errorf("error creating bootstrap admin: %w", err)
	}
	s.logger.Info("bootstrap admin %s added to roster", email)
	return nil
}

// SyncAllAccounts reconciles every roster entry. A member whose sync fails is
// logged and skipped. It returns how many members were synced.
func (s *DefaultService) SyncAllAccounts(ctx context.Context) (int, error) {
	people, err := s.repo.ListSalesPeople(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing sales people: %w", err)
	}

	synced := 0
	for i := range people {
		if err := s.SyncAccount(ctx, &people[i]); err != nil {
			s.logger.Error("account sync for %s skipped: %v", people[i].Email, err)
			continue
		}
		synced++
	}
	return synced, nil
}

// SyncAccount makes sure the roster member has a login account that holds
// exactly the role declared on the roster
func (s *DefaultService) SyncAccount(ctx context.Context, sp *models.SalesPerson) error {
	if strings.TrimSpace(sp.Email) == "" {
		return nil
	}

	if err := s.ensureRoles(ctx); err != nil {
		return err
	}

	user, err := s.resolveAccount(ctx, sp)
	if err != nil {
		return err
	}

	if sp.IdentityUserID == nil || *sp.IdentityUserID != user.ID {
		if err := s.repo.LinkIdentityUser(ctx, sp.ID, user.ID); err != nil {
			return fmt.Errorf("error linking account: %w", err)
		}
		id := user.ID
		sp.IdentityUserID = &id
	}

	desired := sp.Role.Normalize()
	for _, role := range models.AllRoles {
		inRole, err := s.repo.IsInRole(ctx, user.ID, role)
		if err != nil {
			return fmt.Errorf("%w: checking role %s: %v", ErrDependency, role, err)
		}

		switch {
		case role == desired && !inRole:
			err = s.repo.AddToRole(ctx, user.ID, role)
		case role != desired && inRole:
			err = s.repo.RemoveFromRole(ctx, user.ID, role)
		}
		if err != nil {
			return fmt.Errorf("%w: updating role %s: %v", ErrDependency, role, err)
		}
	}
	return nil
}

func (s *DefaultService) ensureRoles(ctx context.Context) error {
	for _, role := range models.AllRoles {
		exists, err := s.repo.RoleExists(ctx, role)
		if err != nil {
			return fmt.Errorf("%w: checking role %s: %v", ErrDependency, role, err)
		}
		if exists {
			continue
		}
		if err := s.repo.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("%w: creating role %s: %v", ErrDependency, role, err)
		}
	}
	return nil
}

// resolveAccount finds the member's account by link, then by email, and
// creates a pre-confirmed one with the temporary password when neither exists
func (s *DefaultService) resolveAccount(ctx context.Context, sp *models.SalesPerson) (*models.IdentityUser, error) {
	if sp.IdentityUserID != nil {
		user, err := s.repo.GetIdentityUserByID(ctx, *sp.IdentityUserID)
		if err != nil {
			return nil, fmt.Errorf("%w: finding account: %v", ErrDependency, err)
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := s.repo.GetIdentityUserByEmail(ctx, sp.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: finding account: %v", ErrDependency, err)
	}
	if user != nil {
		return user, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user = &models.IdentityUser{
		ID:             uuid.New().String(),
		Email:          sp.Email,
		UserName:       sp.Email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
	}
	if err := s.repo.CreateIdentityUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%w: creating account for %s: %v", ErrDependency, sp.Email, err)
	}

	s.logger.Info("login account created for %s", sp.Email)
	return user, nil
}
