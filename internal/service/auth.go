package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rongwang/nailpos-server/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// roleRank orders roles so a user carrying more than one (before a sync has
// run) is treated as the most privileged
var roleRank = map[models.Role]int{
	models.RoleSales:   1,
	models.RoleManager: 2,
	models.RoleAdmin:   3,
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	// Get the user
	user, err := s.repo.GetIdentityUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if user.IsLockedOut(now) {
		return nil, ErrLockedOut
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.recordLoginFailure(ctx, user)
	}

	if user.AccessFailedCount > 0 || user.LockoutEnd != nil {
		if err := s.repo.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return nil, fmt.Errorf("error resetting login state: %w", err)
		}
	}

	roles, err := s.repo.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting roles: %w", err)
	}
	role := highestRole(roles)
	if role == "" {
		s.logger.Warn("login refused for %s: no role assigned", user.Email)
		return nil, ErrInvalidCredentials
	}

	// Generate JWT token
	token, err := s.generateJWT(user, role)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Email:     user.Email,
		Role:      role,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

// recordLoginFailure counts a bad password and locks the account once the
// limit is reached
func (s *DefaultService) recordLoginFailure(ctx context.Context, user *models.IdentityUser) error {
	failed := user.AccessFailedCount + 1

	if s.maxFailedAttempts > 0 && failed >= s.maxFailedAttempts {
		end := s.now().Add(s.lockoutDuration)
		if err := s.repo.UpdateLoginState(ctx, user.ID, 0, &end); err != nil {
			return fmt.Errorf("error updating login state: %w", err)
		}
		s.logger.Warn("account %s locked until %s", user.Email, end.Format(time.RFC3339))
		return ErrLockedOut
	}

	if err := s.repo.UpdateLoginState(ctx, user.ID, failed, nil); err != nil {
		return fmt.Errorf("error updating login state: %w", err)
	}
	return ErrInvalidCredentials
}

func highestRole(roles []models.Role) models.Role {
	var best models.Role
	for _, r := range roles {
		if roleRank[r] > roleRank[best] {
			best = r
		}
	}
	return best
}

// Helper methods
func (s *DefaultService) generateJWT(user *models.IdentityUser, role models.Role) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		"sub":   user.ID, // subject
		"email": user.Email,
		"role":  string(role),
		"exp":   now.Add(s.tokenDuration).Unix(),
		"iat":   now.Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
