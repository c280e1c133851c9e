package tallyrpc

import (
	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/recorder"
	"github.com/mmynk/tallysheet/internal/tallysheet"
)

type ListClassificationsRequest struct {
	PlantID int64 `json:"plant_id"`
}

// ListClassificationsResponse lists classifications in the caller's order.
type ListClassificationsResponse struct {
	Classifications []models.WeightClassification `json:"classifications"`
}

type ResolveClassificationRequest struct {
	PlantID int64   `json:"plant_id"`
	Weight  float64 `json:"weight"`
}

type ResolveClassificationResponse struct {
	Classification models.WeightClassification `json:"classification"`
}

type CheckAllocationRequest struct {
	SessionID        int64       `json:"session_id"`
	ClassificationID int64       `json:"classification_id"`
	Role             models.Role `json:"role"`
	Delta            int         `json:"delta"`
}

type CheckAllocationResponse struct {
	ledger.Decision
	RequiresConfirmation bool `json:"requires_confirmation"`
}

// SubmitEntryRequest is one entry-screen submission. Heads is nil when the
// field was not collected. Confirmed must be set to commit a submission
// that needs confirmation.
type SubmitEntryRequest struct {
	SessionID        int64         `json:"session_id"`
	Mode             recorder.Mode `json:"mode"`
	Role             models.Role   `json:"role"`
	Weight           float64       `json:"weight,omitempty"`
	ClassificationID int64         `json:"classification_id,omitempty"`
	Heads            *float64      `json:"heads,omitempty"`
	Quantity         int           `json:"quantity,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Confirmed        bool          `json:"confirmed"`
}

// SubmitEntryResponse either asks for confirmation, with no entries
// created, or carries the created entries and the refreshed allocation.
type SubmitEntryResponse struct {
	RequiresConfirmation bool                        `json:"requires_confirmation"`
	Verdict              ledger.Verdict              `json:"verdict"`
	Message              string                      `json:"message,omitempty"`
	ConfirmationPrompt   string                      `json:"confirmation_prompt,omitempty"`
	Classification       models.WeightClassification `json:"classification"`
	Entries              []models.TallyLogEntry      `json:"entries,omitempty"`
	Allocation           *models.AllocationView      `json:"allocation,omitempty"`
}

type ListLogEntriesRequest struct {
	SessionID int64        `json:"session_id"`
	Role      *models.Role `json:"role,omitempty"`
}

type ListLogEntriesResponse struct {
	Entries []models.TallyLogEntry `json:"entries"`
}

type ListAllocationsRequest struct {
	SessionID int64       `json:"session_id"`
	Role      models.Role `json:"role,omitempty"`
}

// ListAllocationsResponse carries the allocations and, for Role, the
// per-classification progress.
type ListAllocationsResponse struct {
	Allocations []models.AllocationView `json:"allocations"`
	Progress    []ledger.Progress       `json:"progress,omitempty"`
}

type BuildTallySheetRequest struct {
	SessionIDs []int64     `json:"session_ids"`
	Role       models.Role `json:"role"`
}

type BuildTallySheetResponse struct {
	tallysheet.Export
}

type ExportSummaryRequest struct {
	SessionIDs []int64     `json:"session_ids"`
	Role       models.Role `json:"role,omitempty"`
}

type ExportSummaryResponse struct {
	tallysheet.Summary
}

type ReconcileSessionRequest struct {
	SessionID int64 `json:"session_id"`
}

type ReconcileSessionResponse struct {
	Threshold  int               `json:"threshold"`
	Mismatches []ledger.Mismatch `json:"mismatches"`
}

type GetPreferencesRequest struct{}

type PreferencesResponse struct {
	Preferences models.Preferences `json:"preferences"`
}

type UpdateClassificationOrderRequest struct {
	Category          models.Category `json:"category"`
	ClassificationIDs []int64         `json:"classification_ids"`
}

type ResetClassificationOrderRequest struct{}
