package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/autoyard/autoyard-backend/pkg/db"
	"github.com/autoyard/autoyard-backend/pkg/db/models"
	"github.com/autoyard/autoyard-backend/pkg/enums"
	pkgerrors "github.com/autoyard/autoyard-backend/pkg/errors"
	"github.com/autoyard/autoyard-backend/pkg/identity"
	"github.com/autoyard/autoyard-backend/pkg/logger"
)

// ProfileFetcher looks a user up at the identity provider.
type ProfileFetcher interface {
	GetUser(ctx context.Context, externalID string) (identity.Profile, error)
}

type ServiceParams struct {
	Repo *Repository
	// Profiles is optional; token claims are used when it is nil or fails.
	Profiles        ProfileFetcher
	BootstrapAdmins func(externalID string) bool
	Logger          *logger.Logger
}

// Service provisions users and manages roles.
type Service interface {
	EnsureUser(ctx context.Context, ident ExternalIdentity) (*Actor, error)
	ListUsers(ctx context.Context, actor *Actor) ([]UserDTO, error)
	UpdateRole(ctx context.Context, actor *Actor, externalID, role string) (UserDTO, error)
}

type service struct {
	repo            *Repository
	profiles        ProfileFetcher
	bootstrapAdmins func(string) bool
	logg            *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	bootstrap := params.BootstrapAdmins
	if bootstrap == nil {
		bootstrap = func(string) bool { return false }
	}
	return &service{
		repo:            params.Repo,
		profiles:        params.Profiles,
		bootstrapAdmins: bootstrap,
		logg:            params.Logger,
	}, nil
}

// EnsureUser returns the stored user for the identity, creating it on first
// sight. Concurrent first requests race on the external_id unique key; the
// loser re-reads the winner's row.
func (s *service) EnsureUser(ctx context.Context, ident ExternalIdentity) (*Actor, error) {
	externalID := strings.TrimSpace(ident.ExternalID)
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity token has no subject")
	}

	existing, err := s.repo.FindByExternalID(ctx, externalID)
	if err == nil {
		return actorFromModel(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	user := s.newUser(ctx, externalID, ident)
	if err := s.repo.Create(ctx, user); err != nil {
		if !db.IsUniqueViolation(err, "users_external_id_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		winner, findErr := s.repo.FindByExternalID(ctx, externalID)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load user")
		}
		return actorFromModel(winner), nil
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id": user.ID.String(),
			"role":    user.Role.String(),
		}), "user.provisioned")
	}
	return actorFromModel(user), nil
}

func (s *service) newUser(ctx context.Context, externalID string, ident ExternalIdentity) *models.User {
	profile := identity.Profile{
		ExternalID: externalID,
		Name:       ident.Name,
		Email:      ident.Email,
		ImageURL:   ident.ImageURL,
	}
	if s.profiles != nil {
		fetched, err := s.profiles.GetUser(ctx, externalID)
		switch {
		case err == nil:
			profile = mergeProfile(profile, fetched)
		case s.logg != nil:
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "user.profile_lookup_failed")
		}
	}

	role := enums.UserRoleUser
	if s.bootstrapAdmins(externalID) {
		role = enums.UserRoleAdmin
	}

	return &models.User{
		ExternalID: externalID,
		Email:      profile.Email,
		Name:       optionalString(profile.Name),
		ImageURL:   optionalString(profile.ImageURL),
		Phone:      optionalString(profile.Phone),
		Role:       role,
	}
}

// mergeProfile prefers provider values and keeps claim values where the provider is blank.
func mergeProfile(claims, provider identity.Profile) identity.Profile {
	out := claims
	if provider.Name != "" {
		out.Name = provider.Name
	}
	if provider.Email != "" {
		out.Email = provider.Email
	}
	if provider.ImageURL != "" {
		out.ImageURL = provider.ImageURL
	}
	if provider.Phone != "" {
		out.Phone = provider.Phone
	}
	return out
}

func (s *service) ListUsers(ctx context.Context, actor *Actor) ([]UserDTO, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) UpdateRole(ctx context.Context, actor *Actor, externalID, role string) (UserDTO, error) {
	if err := RequireAdmin(actor); err != nil {
		return UserDTO{}, err
	}
	parsed, err := enums.ParseUserRole(strings.ToUpper(strings.TrimSpace(role)))
	if err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role must be ADMIN or USER")
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	affected, err := s.repo.UpdateRole(ctx, externalID, parsed)
	if err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user role")
	}
	if affected == 0 {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	updated, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(*updated), nil
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
