// Package scan resolves raw scan tokens to profiles. A token is whatever an
// NFC read or QR decode produced: a full profile URL, a bare numeric id, or a
// legacy opaque NFC tag id.
package scan

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

// ProfileLookup is the subset of the profile store the resolver needs.
type ProfileLookup interface {
	GetByID(ctx context.Context, id int32) (*models.Profile, error)
	GetByNFCTag(ctx context.Context, tagID string) (*models.Profile, error)
}

// Resolver maps scan tokens to profiles. Resolution has no side effects; the
// view is recorded by whoever fetches the profile afterwards.
type Resolver struct {
	profiles ProfileLookup
}

// NewResolver creates a new scan token resolver
func NewResolver(profiles ProfileLookup) *Resolver {
	return &Resolver{profiles: profiles}
}

// profileURLPattern matches profile URLs like "https://host/profile/123".
var profileURLPattern = regexp.MustCompile(`profile/(\d+)`)

// digitsPattern matches tokens that are a bare numeric id.
var digitsPattern = regexp.MustCompile(`^\d+$`)

// Resolve maps a raw scan token to the profile it identifies.
//
// Precedence mirrors the scan flow: a URL containing profile/<digits> wins,
// then a purely numeric token, and anything else is treated as a legacy NFC
// tag id. Errors carry codes INVALID_TOKEN or PROFILE_NOT_FOUND.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_TOKEN",
			Message: "scan token is empty",
		}
	}

	if match := profileURLPattern.FindStringSubmatch(token); match != nil {
		return r.resolveNumeric(ctx, token, match[1])
	}

	if digitsPattern.MatchString(token) {
		return r.resolveNumeric(ctx, token, token)
	}

	// Legacy tags carry an opaque id instead of a URL
	profile, err := r.profiles.GetByNFCTag(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve NFC tag: %w", err)
	}
	if profile == nil {
		return nil, notFound(token)
	}

	return profile, nil
}

func (r *Resolver) resolveNumeric(ctx context.Context, token, digits string) (*models.Profile, error) {
	id, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		// Digits overflowing int32 cannot identify any profile
		return nil, notFound(token)
	}

	profile, err := r.profiles.GetByID(ctx, int32(id))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile id: %w", err)
	}
	if profile == nil {
		return nil, notFound(token)
	}

	return profile, nil
}

func notFound(token string) *types.ServiceError {
	return &types.ServiceError{
		Code:    "PROFILE_NOT_FOUND",
		Message: fmt.Sprintf("no profile found for scan token: %s", token),
		Details: map[string]interface{}{
			"token": token,
		},
	}
}
