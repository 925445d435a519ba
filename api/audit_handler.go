package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/id"
)

func (a *API) registerAuditRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("audit"))

	if err := g.GET("/audit-events", a.listAuditEvents,
		forge.WithSummary("List audit events"),
		forge.WithDescription("Lists audit events with optional filters, newest first."),
		forge.WithOperationID("listAuditEvents"),
		forge.WithRequestSchema(ListAuditEventsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit event list", ListResponse[*audit.Event]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/audit-events/:eventId", a.getAuditEvent,
		forge.WithSummary("Get audit event"),
		forge.WithDescription("Returns details of a specific audit event."),
		forge.WithOperationID("getAuditEvent"),
		forge.WithResponseSchema(http.StatusOK, "Audit event details", &audit.Event{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/audit-events/purge", a.purgeAuditEvents,
		forge.WithSummary("Purge audit events"),
		forge.WithDescription("Deletes audit events created before the given time."),
		forge.WithOperationID("purgeAuditEvents"),
		forge.WithRequestSchema(PurgeAuditEventsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Purge result", PurgeResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listAuditEvents(ctx forge.Context, req *ListAuditEventsRequest) (*ListResponse[*audit.Event], error) {
	_, tenantID := bastion.TenantScope(ctx.Context())
	filter := &audit.QueryFilter{
		TenantID:     tenantID,
		Action:       req.Action,
		ActorID:      req.ActorID,
		TargetUserID: req.TargetUserID,
		Permission:   req.Permission,
		Decision:     req.Decision,
		Limit:        defaultLimit(req.Limit),
		Offset:       req.Offset,
	}
	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid after: %v", err))
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid before: %v", err))
		}
		filter.Before = &t
	}

	events, err := a.eng.Store().ListAuditEvents(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountAuditEvents(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*audit.Event]{Items: events, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getAuditEvent(ctx forge.Context, _ *GetAuditEventRequest) (*audit.Event, error) {
	eventID, err := id.ParseAuditEventID(ctx.Param("eventId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid event ID: %v", err))
	}

	e, err := a.eng.Store().GetAuditEvent(ctx.Context(), eventID)
	if err != nil {
		return nil, mapError(err)
	}

	return e, ctx.JSON(http.StatusOK, e)
}

func (a *API) purgeAuditEvents(ctx forge.Context, req *PurgeAuditEventsRequest) (*PurgeResponse, error) {
	if req.Before == "" {
		return nil, forge.BadRequest("before is required")
	}
	before, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid before: %v", err))
	}

	deleted, err := a.eng.Store().PurgeAuditEvents(ctx.Context(), before)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &PurgeResponse{Deleted: deleted}
	return resp, ctx.JSON(http.StatusOK, resp)
}
