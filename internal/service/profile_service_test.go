package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/storage"
	"github.com/tapcard/internal/types"
)

func TestProfileService_Save_CreatesOnFirstSave(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, nil, testLogger())

	profile, err := svc.Save(context.Background(), "u1", &SaveProfileInput{
		Name:       strPtr("Alice"),
		Profession: strPtr("Engineer"),
		SocialLinks: models.SocialLinks{
			types.PlatformGitHub: "alice",
		},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if profile.ID == 0 {
		t.Error("Expected generated profile id")
	}
	if profile.Name != "Alice" {
		t.Errorf("Expected name Alice, got %s", profile.Name)
	}
	if !profile.IsPublic {
		t.Error("Expected new profiles to default to public")
	}
}

func TestProfileService_Save_UpdatesInPlace(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, nil, testLogger())

	first, err := svc.Save(context.Background(), "u1", &SaveProfileInput{Name: strPtr("Alice")})
	if err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second, err := svc.Save(context.Background(), "u1", &SaveProfileInput{
		Company: strPtr("Acme"),
	})
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected update in place, got new id %d", second.ID)
	}
	if second.Name != "Alice" {
		t.Errorf("Expected unchanged name, got %s", second.Name)
	}
	if second.Company == nil || *second.Company != "Acme" {
		t.Error("Expected company to be set")
	}
	if len(repo.profiles) != 1 {
		t.Errorf("Expected one profile per user, got %d", len(repo.profiles))
	}
}

func TestProfileService_Save_RequiresNameOnCreate(t *testing.T) {
	svc := NewProfileService(&mockProfileRepo{}, nil, testLogger())

	_, err := svc.Save(context.Background(), "u1", &SaveProfileInput{})
	assertServiceError(t, err, "VALIDATION_ERROR")

	_, err = svc.Save(context.Background(), "u1", &SaveProfileInput{Name: strPtr("")})
	assertServiceError(t, err, "VALIDATION_ERROR")
}

func TestProfileService_Save_RejectsUnknownSocialPlatform(t *testing.T) {
	svc := NewProfileService(&mockProfileRepo{}, nil, testLogger())

	_, err := svc.Save(context.Background(), "u1", &SaveProfileInput{
		Name: strPtr("Alice"),
		SocialLinks: models.SocialLinks{
			types.SocialPlatform("myspace"): "alice",
		},
	})
	assertServiceError(t, err, "VALIDATION_ERROR")
}

func TestProfileService_GetPublicByID_AbsentIsNil(t *testing.T) {
	svc := NewProfileService(&mockProfileRepo{}, nil, testLogger())

	profile, err := svc.GetPublicByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPublicByID failed: %v", err)
	}
	if profile != nil {
		t.Error("Expected nil for an absent profile")
	}
}

func TestProfileService_GetPublicByNFCTag(t *testing.T) {
	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, nil, testLogger())

	_, err := svc.Save(context.Background(), "u1", &SaveProfileInput{
		Name:     strPtr("Alice"),
		NFCTagID: strPtr("tag-abc"),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	profile, err := svc.GetPublicByNFCTag(context.Background(), "tag-abc")
	if err != nil {
		t.Fatalf("GetPublicByNFCTag failed: %v", err)
	}
	if profile == nil || profile.Name != "Alice" {
		t.Fatal("Expected Alice's profile for tag-abc")
	}

	missing, err := svc.GetPublicByNFCTag(context.Background(), "tag-other")
	if err != nil {
		t.Fatalf("GetPublicByNFCTag failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for an unknown tag")
	}
}

func TestProfileService_GetPublicByNFCTag_CaseVariantTagsAreDistinct(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := storage.NewCacheService(storage.NewRedisCacheFromClient(client), 30*time.Second)

	repo := &mockProfileRepo{}
	svc := NewProfileService(repo, cache, testLogger())

	ctx := context.Background()
	if _, err := svc.Save(ctx, "u1", &SaveProfileInput{Name: strPtr("Alice"), NFCTagID: strPtr("TAG1")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := svc.Save(ctx, "u2", &SaveProfileInput{Name: strPtr("Bob"), NFCTagID: strPtr("tag1")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The first lookup populates the cache; the second must not hit the
	// first tag's entry.
	upper, err := svc.GetPublicByNFCTag(ctx, "TAG1")
	if err != nil {
		t.Fatalf("GetPublicByNFCTag failed: %v", err)
	}
	if upper == nil || upper.Name != "Alice" {
		t.Fatalf("Expected Alice for TAG1, got %+v", upper)
	}

	lower, err := svc.GetPublicByNFCTag(ctx, "tag1")
	if err != nil {
		t.Fatalf("GetPublicByNFCTag failed: %v", err)
	}
	if lower == nil || lower.Name != "Bob" {
		t.Fatalf("Expected Bob for tag1, got %+v", lower)
	}
}

func assertServiceError(t *testing.T, err error, code string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", code)
	}

	var svcErr *types.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected ServiceError, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Errorf("Expected code %s, got %s", code, svcErr.Code)
	}
}
