package tallyrpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// TallyServiceName is the fully-qualified name of the TallyService service.
	TallyServiceName = "tally.v1.TallyService"
	// PreferenceServiceName is the fully-qualified name of the PreferenceService service.
	PreferenceServiceName = "tally.v1.PreferenceService"
)

// Procedure paths, in Connect's /package.Service/Method form.
const (
	TallyServiceListClassificationsProcedure   = "/tally.v1.TallyService/ListClassifications"
	TallyServiceResolveClassificationProcedure = "/tally.v1.TallyService/ResolveClassification"
	TallyServiceCheckAllocationProcedure       = "/tally.v1.TallyService/CheckAllocation"
	TallyServiceSubmitEntryProcedure           = "/tally.v1.TallyService/SubmitEntry"
	TallyServiceListLogEntriesProcedure        = "/tally.v1.TallyService/ListLogEntries"
	TallyServiceListAllocationsProcedure       = "/tally.v1.TallyService/ListAllocations"
	TallyServiceBuildTallySheetProcedure       = "/tally.v1.TallyService/BuildTallySheet"
	TallyServiceExportSummaryProcedure         = "/tally.v1.TallyService/ExportSummary"
	TallyServiceReconcileSessionProcedure      = "/tally.v1.TallyService/ReconcileSession"

	PreferenceServiceGetPreferencesProcedure            = "/tally.v1.PreferenceService/GetPreferences"
	PreferenceServiceUpdateClassificationOrderProcedure = "/tally.v1.PreferenceService/UpdateClassificationOrder"
	PreferenceServiceResetClassificationOrderProcedure  = "/tally.v1.PreferenceService/ResetClassificationOrder"
)

// TallyServiceHandler is implemented by the tally service.
type TallyServiceHandler interface {
	ListClassifications(context.Context, *connect.Request[ListClassificationsRequest]) (*connect.Response[ListClassificationsResponse], error)
	ResolveClassification(context.Context, *connect.Request[ResolveClassificationRequest]) (*connect.Response[ResolveClassificationResponse], error)
	CheckAllocation(context.Context, *connect.Request[CheckAllocationRequest]) (*connect.Response[CheckAllocationResponse], error)
	SubmitEntry(context.Context, *connect.Request[SubmitEntryRequest]) (*connect.Response[SubmitEntryResponse], error)
	ListLogEntries(context.Context, *connect.Request[ListLogEntriesRequest]) (*connect.Response[ListLogEntriesResponse], error)
	ListAllocations(context.Context, *connect.Request[ListAllocationsRequest]) (*connect.Response[ListAllocationsResponse], error)
	BuildTallySheet(context.Context, *connect.Request[BuildTallySheetRequest]) (*connect.Response[BuildTallySheetResponse], error)
	ExportSummary(context.Context, *connect.Request[ExportSummaryRequest]) (*connect.Response[ExportSummaryResponse], error)
	ReconcileSession(context.Context, *connect.Request[ReconcileSessionRequest]) (*connect.Response[ReconcileSessionResponse], error)
}

// PreferenceServiceHandler is implemented by the preference service.
type PreferenceServiceHandler interface {
	GetPreferences(context.Context, *connect.Request[GetPreferencesRequest]) (*connect.Response[PreferencesResponse], error)
	UpdateClassificationOrder(context.Context, *connect.Request[UpdateClassificationOrderRequest]) (*connect.Response[PreferencesResponse], error)
	ResetClassificationOrder(context.Context, *connect.Request[ResetClassificationOrderRequest]) (*connect.Response[PreferencesResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// route serves each procedure path with its handler.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// NewTallyServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewTallyServiceHandler(svc TallyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + TallyServiceName + "/", route(map[string]http.Handler{
		TallyServiceListClassificationsProcedure:   connect.NewUnaryHandler(TallyServiceListClassificationsProcedure, svc.ListClassifications, opts...),
		TallyServiceResolveClassificationProcedure: connect.NewUnaryHandler(TallyServiceResolveClassificationProcedure, svc.ResolveClassification, opts...),
		TallyServiceCheckAllocationProcedure:       connect.NewUnaryHandler(TallyServiceCheckAllocationProcedure, svc.CheckAllocation, opts...),
		TallyServiceSubmitEntryProcedure:           connect.NewUnaryHandler(TallyServiceSubmitEntryProcedure, svc.SubmitEntry, opts...),
		TallyServiceListLogEntriesProcedure:        connect.NewUnaryHandler(TallyServiceListLogEntriesProcedure, svc.ListLogEntries, opts...),
		TallyServiceListAllocationsProcedure:       connect.NewUnaryHandler(TallyServiceListAllocationsProcedure, svc.ListAllocations, opts...),
		TallyServiceBuildTallySheetProcedure:       connect.NewUnaryHandler(TallyServiceBuildTallySheetProcedure, svc.BuildTallySheet, opts...),
		TallyServiceExportSummaryProcedure:         connect.NewUnaryHandler(TallyServiceExportSummaryProcedure, svc.ExportSummary, opts...),
		TallyServiceReconcileSessionProcedure:      connect.NewUnaryHandler(TallyServiceReconcileSessionProcedure, svc.ReconcileSession, opts...),
	})
}

// NewPreferenceServiceHandler builds an HTTP handler for the preference service.
func NewPreferenceServiceHandler(svc PreferenceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + PreferenceServiceName + "/", route(map[string]http.Handler{
		PreferenceServiceGetPreferencesProcedure:            connect.NewUnaryHandler(PreferenceServiceGetPreferencesProcedure, svc.GetPreferences, opts...),
		PreferenceServiceUpdateClassificationOrderProcedure: connect.NewUnaryHandler(PreferenceServiceUpdateClassificationOrderProcedure, svc.UpdateClassificationOrder, opts...),
		PreferenceServiceResetClassificationOrderProcedure:  connect.NewUnaryHandler(PreferenceServiceResetClassificationOrderProcedure, svc.ResetClassificationOrder, opts...),
	})
}

// TallyServiceClient calls a TallyService over HTTP.
type TallyServiceClient struct {
	listClassifications   *connect.Client[ListClassificationsRequest, ListClassificationsResponse]
	resolveClassification *connect.Client[ResolveClassificationRequest, ResolveClassificationResponse]
	checkAllocation       *connect.Client[CheckAllocationRequest, CheckAllocationResponse]
	submitEntry           *connect.Client[SubmitEntryRequest, SubmitEntryResponse]
	listLogEntries        *connect.Client[ListLogEntriesRequest, ListLogEntriesResponse]
	listAllocations       *connect.Client[ListAllocationsRequest, ListAllocationsResponse]
	buildTallySheet       *connect.Client[BuildTallySheetRequest, BuildTallySheetResponse]
	exportSummary         *connect.Client[ExportSummaryRequest, ExportSummaryResponse]
	reconcileSession      *connect.Client[ReconcileSessionRequest, ReconcileSessionResponse]
}

// NewTallyServiceClient constructs a client for the TallyService at baseURL
// (for example, http://localhost:8080).
func NewTallyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TallyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &TallyServiceClient{
		listClassifications:   connect.NewClient[ListClassificationsRequest, ListClassificationsResponse](httpClient, baseURL+TallyServiceListClassificationsProcedure, opts...),
		resolveClassification: connect.NewClient[ResolveClassificationRequest, ResolveClassificationResponse](httpClient, baseURL+TallyServiceResolveClassificationProcedure, opts...),
		checkAllocation:       connect.NewClient[CheckAllocationRequest, CheckAllocationResponse](httpClient, baseURL+TallyServiceCheckAllocationProcedure, opts...),
		submitEntry:           connect.NewClient[SubmitEntryRequest, SubmitEntryResponse](httpClient, baseURL+TallyServiceSubmitEntryProcedure, opts...),
		listLogEntries:        connect.NewClient[ListLogEntriesRequest, ListLogEntriesResponse](httpClient, baseURL+TallyServiceListLogEntriesProcedure, opts...),
		listAllocations:       connect.NewClient[ListAllocationsRequest, ListAllocationsResponse](httpClient, baseURL+TallyServiceListAllocationsProcedure, opts...),
		buildTallySheet:       connect.NewClient[BuildTallySheetRequest, BuildTallySheetResponse](httpClient, baseURL+TallyServiceBuildTallySheetProcedure, opts...),
		exportSummary:         connect.NewClient[ExportSummaryRequest, ExportSummaryResponse](httpClient, baseURL+TallyServiceExportSummaryProcedure, opts...),
		reconcileSession:      connect.NewClient[ReconcileSessionRequest, ReconcileSessionResponse](httpClient, baseURL+TallyServiceReconcileSessionProcedure, opts...),
	}
}

func (c *TallyServiceClient) ListClassifications(ctx context.Context, req *connect.Request[ListClassificationsRequest]) (*connect.Response[ListClassificationsResponse], error) {
	return c.listClassifications.CallUnary(ctx, req)
}

func (c *TallyServiceClient) ResolveClassification(ctx context.Context, req *connect.Request[ResolveClassificationRequest]) (*connect.Response[ResolveClassificationResponse], error) {
	return c.resolveClassification.CallUnary(ctx, req)
}

func (c *TallyServiceClient) CheckAllocation(ctx context.Context, req *connect.Request[CheckAllocationRequest]) (*connect.Response[CheckAllocationResponse], error) {
	return c.checkAllocation.CallUnary(ctx, req)
}

func (c *TallyServiceClient) SubmitEntry(ctx context.Context, req *connect.Request[SubmitEntryRequest]) (*connect.Response[SubmitEntryResponse], error) {
	return c.submitEntry.CallUnary(ctx, req)
}

func (c *TallyServiceClient) ListLogEntries(ctx context.Context, req *connect.Request[ListLogEntriesRequest]) (*connect.Response[ListLogEntriesResponse], error) {
	return c.listLogEntries.CallUnary(ctx, req)
}

func (c *TallyServiceClient) ListAllocations(ctx context.Context, req *connect.Request[ListAllocationsRequest]) (*connect.Response[ListAllocationsResponse], error) {
	return c.listAllocations.CallUnary(ctx, req)
}

func (c *TallyServiceClient) BuildTallySheet(ctx context.Context, req *connect.Request[BuildTallySheetRequest]) (*connect.Response[BuildTallySheetResponse], error) {
	return c.buildTallySheet.CallUnary(ctx, req)
}

func (c *TallyServiceClient) ExportSummary(ctx context.Context, req *connect.Request[ExportSummaryRequest]) (*connect.Response[ExportSummaryResponse], error) {
	return c.exportSummary.CallUnary(ctx, req)
}

func (c *TallyServiceClient) ReconcileSession(ctx context.Context, req *connect.Request[ReconcileSessionRequest]) (*connect.Response[ReconcileSessionResponse], error) {
	return c.reconcileSession.CallUnary(ctx, req)
}

// PreferenceServiceClient calls a PreferenceService over HTTP.
type PreferenceServiceClient struct {
	getPreferences            *connect.Client[GetPreferencesRequest, PreferencesResponse]
	updateClassificationOrder *connect.Client[UpdateClassificationOrderRequest, PreferencesResponse]
	resetClassificationOrder  *connect.Client[ResetClassificationOrderRequest, PreferencesResponse]
}

// NewPreferenceServiceClient constructs a client for the PreferenceService at baseURL.
func NewPreferenceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PreferenceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &PreferenceServiceClient{
		getPreferences:            connect.NewClient[GetPreferencesRequest, PreferencesResponse](httpClient, baseURL+PreferenceServiceGetPreferencesProcedure, opts...),
		updateClassificationOrder: connect.NewClient[UpdateClassificationOrderRequest, PreferencesResponse](httpClient, baseURL+PreferenceServiceUpdateClassificationOrderProcedure, opts...),
		resetClassificationOrder:  connect.NewClient[ResetClassificationOrderRequest, PreferencesResponse](httpClient, baseURL+PreferenceServiceResetClassificationOrderProcedure, opts...),
	}
}

func (c *PreferenceServiceClient) GetPreferences(ctx context.Context, req *connect.Request[GetPreferencesRequest]) (*connect.Response[PreferencesResponse], error) {
	return c.getPreferences.CallUnary(ctx, req)
}

func (c *PreferenceServiceClient) UpdateClassificationOrder(ctx context.Context, req *connect.Request[UpdateClassificationOrderRequest]) (*connect.Response[PreferencesResponse], error) {
	return c.updateClassificationOrder.CallUnary(ctx, req)
}

func (c *PreferenceServiceClient) ResetClassificationOrder(ctx context.Context, req *connect.Request[ResetClassificationOrderRequest]) (*connect.Response[PreferencesResponse], error) {
	return c.resetClassificationOrder.CallUnary(ctx, req)
}
