package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

func TestPreferenceService(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.prefs.GetPreferences(ctx, connect.NewRequest(&tallyrpc.GetPreferencesRequest{}))
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if len(resp.Msg.Preferences.ClassificationOrder) != 0 {
		t.Errorf("expected no custom order, got %v", resp.Msg.Preferences.ClassificationOrder)
	}

	order := []int64{env.classes["SQ"].ID, env.classes["P1"].ID}
	resp, err = env.prefs.UpdateClassificationOrder(ctx, connect.NewRequest(&tallyrpc.UpdateClassificationOrderRequest{
		Category:          "dressed",
		ClassificationIDs: order,
	}))
	if err != nil {
		t.Fatalf("UpdateClassificationOrder failed: %v", err)
	}
	if diff := cmp.Diff(order, resp.Msg.Preferences.ClassificationOrder[models.CategoryDressed]); diff != "" {
		t.Errorf("stored order mismatch (-want +got):\n%s", diff)
	}

	t.Run("ListClassifications follows the custom order", func(t *testing.T) {
		list, err := env.tally.ListClassifications(ctx, connect.NewRequest(&tallyrpc.ListClassificationsRequest{PlantID: env.plant.ID}))
		if err != nil {
			t.Fatalf("ListClassifications failed: %v", err)
		}
		classes := list.Msg.Classifications
		if len(classes) < 2 || classes[0].Classification != "SQ" || classes[1].Classification != "P1" {
			t.Errorf("expected SQ, P1 first, got %v", names(classes))
		}
	})

	t.Run("Unknown category", func(t *testing.T) {
		_, err := env.prefs.UpdateClassificationOrder(ctx, connect.NewRequest(&tallyrpc.UpdateClassificationOrderRequest{
			Category:          "Chilled",
			ClassificationIDs: order,
		}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("Reset drops every order", func(t *testing.T) {
		resp, err := env.prefs.ResetClassificationOrder(ctx, connect.NewRequest(&tallyrpc.ResetClassificationOrderRequest{}))
		if err != nil {
			t.Fatalf("ResetClassificationOrder failed: %v", err)
		}
		if len(resp.Msg.Preferences.ClassificationOrder) != 0 {
			t.Errorf("expected empty order, got %v", resp.Msg.Preferences.ClassificationOrder)
		}
	})
}

func names(classes []models.WeightClassification) []string {
	out := make([]string, len(classes))
	for i, wc := range classes {
		out[i] = wc.Classification
	}
	return out
}
