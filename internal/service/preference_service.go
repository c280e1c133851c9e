package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tallysheet/internal/middleware"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/storage"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

var _ tallyrpc.PreferenceServiceHandler = (*PreferenceService)(nil)

// PreferenceService implements the Connect PreferenceService.
type PreferenceService struct {
	store storage.TallyStore
}

// NewPreferenceService creates a new PreferenceService with the given storage backend.
func NewPreferenceService(store storage.TallyStore) *PreferenceService {
	return &PreferenceService{store: store}
}

func preferencesResponse(p *models.Preferences) *connect.Response[tallyrpc.PreferencesResponse] {
	if p.ClassificationOrder == nil {
		p.ClassificationOrder = models.ClassificationOrder{}
	}
	return connect.NewResponse(&tallyrpc.PreferencesResponse{Preferences: *p})
}

// GetPreferences returns the caller's preferences.
func (s *PreferenceService) GetPreferences(ctx context.Context, req *connect.Request[tallyrpc.GetPreferencesRequest]) (*connect.Response[tallyrpc.PreferencesResponse], error) {
	prefs, err := s.store.GetPreferences(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return preferencesResponse(prefs), nil
}

// UpdateClassificationOrder replaces the caller's order for one category.
// An empty list clears it.
func (s *PreferenceService) UpdateClassificationOrder(ctx context.Context, req *connect.Request[tallyrpc.UpdateClassificationOrderRequest]) (*connect.Response[tallyrpc.PreferencesResponse], error) {
	userID := middleware.GetUserID(ctx)
	category, err := models.ParseCategory(string(req.Msg.Category))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	slog.Info("UpdateClassificationOrder request received",
		"user_id", userID,
		"category", category,
		"count", len(req.Msg.ClassificationIDs),
	)

	prefs, err := s.store.UpdateClassificationOrder(ctx, userID, category, req.Msg.ClassificationIDs)
	if err != nil {
		slog.Error("UpdateClassificationOrder failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	return preferencesResponse(prefs), nil
}

// ResetClassificationOrder drops every custom order for the caller.
func (s *PreferenceService) ResetClassificationOrder(ctx context.Context, req *connect.Request[tallyrpc.ResetClassificationOrderRequest]) (*connect.Response[tallyrpc.PreferencesResponse], error) {
	userID := middleware.GetUserID(ctx)
	prefs, err := s.store.ResetClassificationOrder(ctx, userID)
	if err != nil {
		slog.Error("ResetClassificationOrder failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Info("Classification order reset", "user_id", userID)
	return preferencesResponse(prefs), nil
}
