package service

import (
	"context"
	"fmt"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// ProfileCache is the cache surface the profile service uses for public
// lookups. Implemented by storage.CacheService.
type ProfileCache interface {
	GenerateProfileKey(profileID int32) string
	GenerateNFCTagKey(tagID string) string
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Invalidate(ctx context.Context, keys ...string) error
}

// ProfileService owns profile reads and the save flow. Saving is a
// check-then-write upsert keyed by the owning user id: the first save
// creates, later saves update in place. The two steps are not wrapped in a
// transaction; two racing first-saves can both pass the existence check.
type ProfileService struct {
	profiles ProfileRepository
	cache    ProfileCache
	logger   *logging.Logger
}

// NewProfileService creates a new profile service. The cache may be nil, in
// which case every lookup goes straight to the store.
func NewProfileService(profiles ProfileRepository, cache ProfileCache, logger *logging.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		cache:    cache,
		logger:   logger,
	}
}

// SaveProfileInput carries the profile fields a caller may set. Nil pointers
// on an update mean "leave unchanged".
type SaveProfileInput struct {
	Name        *string            `json:"name,omitempty"`
	Profession  *string            `json:"profession,omitempty"`
	Company     *string            `json:"company,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Website     *string            `json:"website,omitempty"`
	SocialLinks models.SocialLinks `json:"socialLinks,omitempty"`
	IsPublic    *bool              `json:"isPublic,omitempty"`
	NFCTagID    *string            `json:"nfcTagId,omitempty"`
	QRCodeData  *string            `json:"qrCodeData,omitempty"`
}

// Save creates the caller's profile on first save and updates it in place
// afterwards. Name is required on create; social link keys must come from the
// supported platform set.
func (s *ProfileService) Save(ctx context.Context, userID string, input *SaveProfileInput) (*models.Profile, error) {
	if err := validateSocialLinks(input.SocialLinks); err != nil {
		return nil, err
	}

	existing, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for save: %w", err)
	}

	if existing == nil {
		return s.create(ctx, userID, input)
	}
	return s.update(ctx, userID, existing, input)
}

func (s *ProfileService) create(ctx context.Context, userID string, input *SaveProfileInput) (*models.Profile, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "profile name is required",
		}
	}

	profile := &models.Profile{
		UserID:      userID,
		Name:        *input.Name,
		Profession:  input.Profession,
		Company:     input.Company,
		Bio:         input.Bio,
		Phone:       input.Phone,
		Website:     input.Website,
		SocialLinks: input.SocialLinks,
		IsPublic:    true,
		NFCTagID:    input.NFCTagID,
		QRCodeData:  input.QRCodeData,
	}
	if input.IsPublic != nil {
		profile.IsPublic = *input.IsPublic
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"profile_id": profile.ID,
	}).Info("profile created")

	return profile, nil
}

func (s *ProfileService) update(ctx context.Context, userID string, existing *models.Profile, input *SaveProfileInput) (*models.Profile, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "profile name cannot be empty",
		}
	}

	patch := &models.ProfilePatch{
		Name:        input.Name,
		Profession:  input.Profession,
		Company:     input.Company,
		Bio:         input.Bio,
		Phone:       input.Phone,
		Website:     input.Website,
		SocialLinks: input.SocialLinks,
		IsPublic:    input.IsPublic,
		NFCTagID:    input.NFCTagID,
		QRCodeData:  input.QRCodeData,
	}

	updated, err := s.profiles.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The profile vanished between the check and the write
		return nil, &types.ServiceError{
			Code:    "PROFILE_NOT_FOUND",
			Message: "profile no longer exists",
		}
	}

	s.invalidate(ctx, existing, updated)

	return updated, nil
}

// GetByUser returns the profile owned by userID, or nil when the user has
// not created one yet.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.GetByUser(ctx, userID)
}

// GetPublicByID returns a profile by numeric id for the public card page.
// Cache-aside: a hit skips the store, a miss populates the cache.
func (s *ProfileService) GetPublicByID(ctx context.Context, id int32) (*models.Profile, error) {
	if s.cache != nil {
		key := s.cache.GenerateProfileKey(id)
		var cached models.Profile
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("profile cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	s.cacheProfile(ctx, profile)
	return profile, nil
}

// GetPublicByNFCTag returns a profile by its NFC tag id, cache-aside like
// GetPublicByID.
func (s *ProfileService) GetPublicByNFCTag(ctx context.Context, tagID string) (*models.Profile, error) {
	if s.cache != nil {
		key := s.cache.GenerateNFCTagKey(tagID)
		var cached models.Profile
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("profile cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	profile, err := s.profiles.GetByNFCTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	s.cacheProfile(ctx, profile)
	return profile, nil
}

func (s *ProfileService) cacheProfile(ctx context.Context, profile *models.Profile) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, s.cache.GenerateProfileKey(profile.ID), profile); err != nil {
		s.logger.WithError(err).Warn("profile cache write failed")
	}
	if profile.NFCTagID != nil {
		if err := s.cache.Set(ctx, s.cache.GenerateNFCTagKey(*profile.NFCTagID), profile); err != nil {
			s.logger.WithError(err).Warn("profile cache write failed")
		}
	}
}

// invalidate drops the stale cache entries after an update, including the
// old NFC tag key when the tag changed.
func (s *ProfileService) invalidate(ctx context.Context, before, after *models.Profile) {
	if s.cache == nil {
		return
	}

	keys := []string{s.cache.GenerateProfileKey(after.ID)}
	if before.NFCTagID != nil {
		keys = append(keys, s.cache.GenerateNFCTagKey(*before.NFCTagID))
	}
	if after.NFCTagID != nil {
		keys = append(keys, s.cache.GenerateNFCTagKey(*after.NFCTagID))
	}

	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("profile cache invalidation failed")
	}
}

func validateSocialLinks(links models.SocialLinks) error {
	for platform := range links {
		if !types.ValidSocialPlatform(platform) {
			return &types.ServiceError{
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("unsupported social platform: %s", platform),
				Details: map[string]interface{}{
					"platform": string(platform),
				},
			}
		}
	}
	return nil
}
