package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tallysheet/internal/auth"
	"github.com/mmynk/tallysheet/internal/classify"
	"github.com/mmynk/tallysheet/internal/config"
	"github.com/mmynk/tallysheet/internal/ledger"
	"github.com/mmynk/tallysheet/internal/metrics"
	"github.com/mmynk/tallysheet/internal/middleware"
	"github.com/mmynk/tallysheet/internal/models"
	"github.com/mmynk/tallysheet/internal/recorder"
	"github.com/mmynk/tallysheet/internal/storage"
	"github.com/mmynk/tallysheet/internal/tallysheet"
	"github.com/mmynk/tallysheet/pkg/tallyrpc"
)

var _ tallyrpc.TallyServiceHandler = (*TallyService)(nil)

// TallyService implements the Connect TallyService.
type TallyService struct {
	store     storage.TallyStore
	cfg       config.TallyConfig
	recorder  *recorder.Recorder
	paginator *tallysheet.Paginator
	metrics   *metrics.Metrics
}

// NewTallyService creates a TallyService. m may be nil.
func NewTallyService(store storage.TallyStore, cfg config.TallyConfig, m *metrics.Metrics) *TallyService {
	return &TallyService{
		store:     store,
		cfg:       cfg,
		recorder:  recorder.New(cfg),
		paginator: tallysheet.New(cfg),
		metrics:   m,
	}
}

func canViewLogs(ctx context.Context) bool {
	return middleware.HasPermission(ctx, auth.PermissionViewTallyLogs)
}

// visible strips progress from views the caller may not see.
func visible(ctx context.Context, views []models.AllocationView) []models.AllocationView {
	if canViewLogs(ctx) {
		return views
	}
	out := make([]models.AllocationView, len(views))
	for i, v := range views {
		out[i] = v.RequirementOnly()
	}
	return out
}

func requireViewLogs(ctx context.Context) error {
	if canViewLogs(ctx) {
		return nil
	}
	return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("%s permission required", auth.PermissionViewTallyLogs))
}

func parseRole(role models.Role) (models.Role, error) {
	r, err := models.ParseRole(string(role))
	if err != nil {
		return "", connect.NewError(connect.CodeInvalidArgument, err)
	}
	return r, nil
}

// ListClassifications returns a plant's classifications in the caller's order.
func (s *TallyService) ListClassifications(ctx context.Context, req *connect.Request[tallyrpc.ListClassificationsRequest]) (*connect.Response[tallyrpc.ListClassificationsResponse], error) {
	classifications, err := s.store.ListClassifications(ctx, req.Msg.PlantID)
	if err != nil {
		slog.Error("Failed to list classifications", "plant_id", req.Msg.PlantID, "error", err)
		return nil, toConnectError(err)
	}
	prefs, err := s.store.GetPreferences(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&tallyrpc.ListClassificationsResponse{
		Classifications: classify.OrderAll(classifications, prefs),
	}), nil
}

// ResolveClassification maps a scale weight to a classification.
func (s *TallyService) ResolveClassification(ctx context.Context, req *connect.Request[tallyrpc.ResolveClassificationRequest]) (*connect.Response[tallyrpc.ResolveClassificationResponse], error) {
	classifications, err := s.store.ListClassifications(ctx, req.Msg.PlantID)
	if err != nil {
		return nil, toConnectError(err)
	}

	match := classify.Resolve(req.Msg.Weight, classify.Weighable(classifications))
	if match == nil {
		err := fmt.Errorf("%w: %.2f", recorder.ErrNoClassificationMatch, req.Msg.Weight)
		ce := connect.NewError(connect.CodeNotFound, err)
		ce.Meta().Set(ErrorCodeKey, recorder.Code(err))
		return nil, ce
	}
	return connect.NewResponse(&tallyrpc.ResolveClassificationResponse{Classification: *match}), nil
}

// CheckAllocation runs the pre-commit allocation check without logging anything.
func (s *TallyService) CheckAllocation(ctx context.Context, req *connect.Request[tallyrpc.CheckAllocationRequest]) (*connect.Response[tallyrpc.CheckAllocationResponse], error) {
	role, err := parseRole(req.Msg.Role)
	if err != nil {
		return nil, err
	}
	d, err := loadSession(ctx, s.store, req.Msg.SessionID, false)
	if err != nil {
		return nil, toConnectError(err)
	}

	decision := d.ledger().Check(req.Msg.ClassificationID, role, req.Msg.Delta)
	return connect.NewResponse(&tallyrpc.CheckAllocationResponse{
		Decision:             decision,
		RequiresConfirmation: decision.RequiresConfirmation(),
	}), nil
}

// SubmitEntry validates an entry against a fresh snapshot and, unless it
// needs confirmation that was not given, logs it.
func (s *TallyService) SubmitEntry(ctx context.Context, req *connect.Request[tallyrpc.SubmitEntryRequest]) (*connect.Response[tallyrpc.SubmitEntryResponse], error) {
	msg := req.Msg
	userID := middleware.GetUserID(ctx)
	slog.Info("SubmitEntry request received",
		"session_id", msg.SessionID,
		"mode", msg.Mode,
		"role", msg.Role,
		"classification_id", msg.ClassificationID,
		"quantity", msg.Quantity,
		"confirmed", msg.Confirmed,
	)

	d, err := loadSession(ctx, s.store, msg.SessionID, false)
	if err != nil {
		slog.Error("Failed to load session", "session_id", msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}

	sub, err := s.recorder.Submit(recorder.Input{
		Mode:             msg.Mode,
		Role:             msg.Role,
		Weight:           msg.Weight,
		ClassificationID: msg.ClassificationID,
		Heads:            msg.Heads,
		Quantity:         msg.Quantity,
		Notes:            msg.Notes,
	}, d.classifications, d.ledger())
	if err != nil {
		s.metrics.SubmissionRejected(recorder.Code(err))
		slog.Warn("SubmitEntry rejected", "session_id", msg.SessionID, "code", recorder.Code(err), "error", err)
		return nil, toConnectError(err)
	}

	resp := &tallyrpc.SubmitEntryResponse{
		RequiresConfirmation: sub.RequiresConfirmation,
		Verdict:              sub.Decision.Verdict,
		Message:              sub.Decision.Message,
		ConfirmationPrompt:   sub.ConfirmationPrompt,
		Classification:       sub.Classification,
	}
	if sub.RequiresConfirmation {
		s.metrics.ConfirmationRequired(string(sub.Decision.Verdict))
		if !msg.Confirmed {
			slog.Info("SubmitEntry awaiting confirmation", "session_id", msg.SessionID, "verdict", sub.Decision.Verdict)
			return connect.NewResponse(resp), nil
		}
	}

	created, err := s.recorder.Commit(ctx, s.store, msg.SessionID, userID, sub, msg.Confirmed)
	s.metrics.EntriesRecorded(string(msg.Role), string(sub.Classification.Category), len(created))
	if err != nil {
		slog.Error("Failed to log entries",
			"session_id", msg.SessionID,
			"classification_id", sub.Classification.ID,
			"created", len(created),
			"error", err,
		)
		var batchErr *recorder.BatchError
		if !errors.As(err, &batchErr) {
			s.metrics.SubmissionRejected(recorder.Code(err))
		}
		return nil, toConnectError(err)
	}
	resp.Entries = created

	views, err := s.store.ListAllocations(ctx, msg.SessionID)
	if err != nil {
		// The entries are in; only the refreshed allocation is missing.
		slog.Warn("Failed to refresh allocation", "session_id", msg.SessionID, "error", err)
	} else {
		for _, v := range visible(ctx, views) {
			if v.WeightClassificationID == sub.Classification.ID {
				resp.Allocation = &v
				break
			}
		}
	}

	slog.Info("SubmitEntry completed",
		"session_id", msg.SessionID,
		"classification_id", sub.Classification.ID,
		"role", msg.Role,
		"verdict", sub.Decision.Verdict,
		"entries", len(created),
	)
	return connect.NewResponse(resp), nil
}

// ListLogEntries returns a session's entries, newest first.
func (s *TallyService) ListLogEntries(ctx context.Context, req *connect.Request[tallyrpc.ListLogEntriesRequest]) (*connect.Response[tallyrpc.ListLogEntriesResponse], error) {
	if err := requireViewLogs(ctx); err != nil {
		return nil, err
	}
	if req.Msg.Role != nil {
		if _, err := parseRole(*req.Msg.Role); err != nil {
			return nil, err
		}
	}

	entries, err := s.store.ListLogEntries(ctx, req.Msg.SessionID, req.Msg.Role)
	if err != nil {
		return nil, toConnectError(err)
	}
	if entries == nil {
		entries = []models.TallyLogEntry{}
	}
	return connect.NewResponse(&tallyrpc.ListLogEntriesResponse{Entries: entries}), nil
}

// ListAllocations returns a session's allocations as the caller may see
// them, with progress for the requested role.
func (s *TallyService) ListAllocations(ctx context.Context, req *connect.Request[tallyrpc.ListAllocationsRequest]) (*connect.Response[tallyrpc.ListAllocationsResponse], error) {
	d, err := loadSession(ctx, s.store, req.Msg.SessionID, false)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &tallyrpc.ListAllocationsResponse{Allocations: visible(ctx, d.allocations)}
	if resp.Allocations == nil {
		resp.Allocations = []models.AllocationView{}
	}
	if req.Msg.Role != "" && canViewLogs(ctx) {
		role, err := parseRole(req.Msg.Role)
		if err != nil {
			return nil, err
		}
		resp.Progress = d.ledger().Progress(role)
	}
	return connect.NewResponse(resp), nil
}

func (s *TallyService) loadExport(ctx context.Context, sessionIDs []int64) ([]tallysheet.CustomerInput, error) {
	if len(sessionIDs) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("at least one session_id is required"))
	}
	sessions, err := loadSessions(ctx, s.store, sessionIDs)
	if err != nil {
		slog.Error("Failed to load sessions for export", "session_ids", sessionIDs, "error", err)
		return nil, toConnectError(err)
	}
	return byCustomer(sessions), nil
}

// BuildTallySheet paginates the sessions' entries, one sheet per customer.
func (s *TallyService) BuildTallySheet(ctx context.Context, req *connect.Request[tallyrpc.BuildTallySheetRequest]) (*connect.Response[tallyrpc.BuildTallySheetResponse], error) {
	if err := requireViewLogs(ctx); err != nil {
		return nil, err
	}
	role, err := parseRole(req.Msg.Role)
	if err != nil {
		return nil, err
	}
	customers, err := s.loadExport(ctx, req.Msg.SessionIDs)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.GetPreferences(ctx, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}

	export := s.paginator.BuildExport(customers, role, prefs)
	pages := 0
	for _, sheet := range export.Sheets {
		pages += len(sheet.Pages)
	}
	s.metrics.PagesBuilt(pages)
	slog.Info("Built tally sheet", "sessions", len(req.Msg.SessionIDs), "customers", len(export.Sheets), "pages", pages, "role", role)

	return connect.NewResponse(&tallyrpc.BuildTallySheetResponse{Export: *export}), nil
}

// ExportSummary counts allocated bags per customer and classification.
func (s *TallyService) ExportSummary(ctx context.Context, req *connect.Request[tallyrpc.ExportSummaryRequest]) (*connect.Response[tallyrpc.ExportSummaryResponse], error) {
	role := models.RoleTally
	if req.Msg.Role != "" {
		var err error
		if role, err = parseRole(req.Msg.Role); err != nil {
			return nil, err
		}
	}
	customers, err := s.loadExport(ctx, req.Msg.SessionIDs)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&tallyrpc.ExportSummaryResponse{Summary: *tallysheet.Summarize(customers, role)}), nil
}

// ReconcileSession lists classifications where the tally and dispatcher
// counts disagree by more than the configured threshold.
func (s *TallyService) ReconcileSession(ctx context.Context, req *connect.Request[tallyrpc.ReconcileSessionRequest]) (*connect.Response[tallyrpc.ReconcileSessionResponse], error) {
	if err := requireViewLogs(ctx); err != nil {
		return nil, err
	}
	d, err := loadSession(ctx, s.store, req.Msg.SessionID, false)
	if err != nil {
		return nil, toConnectError(err)
	}

	mismatches := d.ledger().Reconcile(s.cfg.AcceptableDifferenceThreshold)
	if mismatches == nil {
		mismatches = []ledger.Mismatch{}
	}
	return connect.NewResponse(&tallyrpc.ReconcileSessionResponse{
		Threshold:  s.cfg.AcceptableDifferenceThreshold,
		Mismatches: mismatches,
	}), nil
}
