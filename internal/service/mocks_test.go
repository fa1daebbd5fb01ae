package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tapcard/internal/logging"
	"github.com/tapcard/internal/models"
	"github.com/tapcard/internal/types"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelError, logging.FormatText)
}

// Mock profile repository backed by an in-memory slice
type mockProfileRepo struct {
	profiles    []*models.Profile
	nextID      int32
	professions map[string]string
	createFn    func(ctx context.Context, profile *models.Profile) error
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}

	m.nextID++
	profile.ID = m.nextID
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *mockProfileRepo) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id int32) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) GetByNFCTag(ctx context.Context, tagID string) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.NFCTagID != nil && *p.NFCTagID == tagID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) Update(ctx context.Context, userID string, patch *models.ProfilePatch) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.UserID != userID {
			continue
		}

		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Profession != nil {
			p.Profession = patch.Profession
		}
		if patch.Company != nil {
			p.Company = patch.Company
		}
		if patch.Bio != nil {
			p.Bio = patch.Bio
		}
		if patch.Phone != nil {
			p.Phone = patch.Phone
		}
		if patch.Website != nil {
			p.Website = patch.Website
		}
		if patch.SocialLinks != nil {
			p.SocialLinks = patch.SocialLinks
		}
		if patch.IsPublic != nil {
			p.IsPublic = *patch.IsPublic
		}
		if patch.NFCTagID != nil {
			p.NFCTagID = patch.NFCTagID
		}
		if patch.QRCodeData != nil {
			p.QRCodeData = patch.QRCodeData
		}
		p.UpdatedAt = time.Now()
		return p, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) ProfessionsFor(ctx context.Context, userIDs []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, id := range userIDs {
		if profession, ok := m.professions[id]; ok {
			result[id] = profession
		}
	}
	return result, nil
}

// Mock user repository backed by an in-memory map
type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo(ids ...string) *mockUserRepo {
	users := make(map[string]*models.User)
	for _, id := range ids {
		users[id] = &models.User{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	}
	return &mockUserRepo{users: users}
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	stored := *user
	now := time.Now()
	if existing, ok := m.users[user.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.users[user.ID] = &stored
	return &stored, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (m *mockUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

// Mock connection repository backed by an in-memory slice
type mockConnectionRepo struct {
	connections []*models.Connection
	nextID      int32
}

func (m *mockConnectionRepo) Create(ctx context.Context, conn *models.Connection) error {
	m.nextID++
	conn.ID = m.nextID
	conn.ConnectedAt = time.Now()
	stored := *conn
	m.connections = append(m.connections, &stored)
	return nil
}

func (m *mockConnectionRepo) ListFor(ctx context.Context, userID string) ([]*models.ConnectionWithTarget, error) {
	result := make([]*models.ConnectionWithTarget, 0)
	for i := len(m.connections) - 1; i >= 0; i-- {
		conn := m.connections[i]
		if conn.FromUserID != userID {
			continue
		}
		result = append(result, &models.ConnectionWithTarget{
			Connection: *conn,
			ToUser:     models.User{ID: conn.ToUserID},
		})
	}
	return result, nil
}

func (m *mockConnectionRepo) ToggleFavorite(ctx context.Context, userID string, connectionID int32) error {
	for _, conn := range m.connections {
		if conn.ID == connectionID && conn.FromUserID == userID {
			conn.IsFavorite = !conn.IsFavorite
		}
	}
	return nil
}

func (m *mockConnectionRepo) StatsFor(ctx context.Context, userID string) (*types.ConnectionStats, error) {
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	stats := &types.ConnectionStats{}
	for _, conn := range m.connections {
		if conn.FromUserID != userID {
			continue
		}
		stats.Total++
		if !conn.ConnectedAt.Before(weekAgo) {
			stats.ThisWeek++
		}
		if conn.IsFavorite {
			stats.Favorites++
		}
	}
	return stats, nil
}

// Mock view repository backed by an in-memory slice
type mockViewRepo struct {
	views    []*models.ProfileView
	insertFn func(ctx context.Context, view *models.ProfileView) error
}

func (m *mockViewRepo) Insert(ctx context.Context, view *models.ProfileView) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, view)
	}

	if view.ID == "" {
		view.ID = fmt.Sprintf("view-%d", len(m.views)+1)
	}
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now()
	}
	stored := *view
	m.views = append(m.views, &stored)
	return nil
}

func (m *mockViewRepo) ListFor(ctx context.Context, profileID int32) ([]*models.ProfileView, error) {
	result := make([]*models.ProfileView, 0)
	for i := len(m.views) - 1; i >= 0; i-- {
		if m.views[i].ProfileID == profileID {
			result = append(result, m.views[i])
		}
	}
	return result, nil
}

func (m *mockViewRepo) StatsFor(ctx context.Context, profileID int32) (*types.ViewStats, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &types.ViewStats{}
	for _, view := range m.views {
		if view.ProfileID != profileID {
			continue
		}
		stats.TotalViews++
		if !view.ViewedAt.Before(startOfDay) {
			stats.TodayViews++
		}
		if !view.ViewedAt.Before(weekAgo) {
			stats.WeekViews++
		}
	}
	return stats, nil
}

func (m *mockViewRepo) ViewerCounts(ctx context.Context, profileID int32) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, view := range m.views {
		if view.ProfileID != profileID || view.ViewerUserID == nil {
			continue
		}
		counts[*view.ViewerUserID]++
	}
	return counts, nil
}

func strPtr(s string) *string { return &s }

func int32Ptr(i int32) *int32 { return &i }
