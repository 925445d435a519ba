package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("grants"))

	if err := g.POST("/grants", a.createGrant,
		forge.WithSummary("Create grant"),
		forge.WithDescription("Creates a direct per-user grant or deny. At most one grant row may exist per user and permission name."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithCreatedResponse(&grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/grants", a.upsertGrant,
		forge.WithSummary("Upsert grant"),
		forge.WithDescription("Creates or replaces the grant row for the user and permission name."),
		forge.WithOperationID("upsertGrant"),
		forge.WithRequestSchema(UpsertGrantRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant", &grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants/:grantId", a.getGrant,
		forge.WithSummary("Get grant"),
		forge.WithDescription("Returns details of a specific grant."),
		forge.WithOperationID("getGrant"),
		forge.WithResponseSchema(http.StatusOK, "Grant details", &grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/grants/:grantId", a.revokeGrant,
		forge.WithSummary("Revoke grant"),
		forge.WithDescription("Removes a direct grant."),
		forge.WithOperationID("revokeGrant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/grants", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithDescription("Lists direct grants with optional filters."),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", ListResponse[*grant.Grant]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) buildGrant(ctx forge.Context, req *CreateGrantRequest) (*grant.Grant, error) {
	if req.UserID == "" || req.PermissionName == "" {
		return nil, forge.BadRequest("user_id and permission_name are required")
	}
	if _, _, _, err := permission.ParseName(req.PermissionName); err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	appID, tenantID := bastion.TenantScope(ctx.Context())
	now := time.Now().UTC()
	return &grant.Grant{
		ID:             id.NewGrantID(),
		TenantID:       tenantID,
		AppID:          appID,
		UserID:         req.UserID,
		PermissionName: req.PermissionName,
		IsGranted:      req.IsGranted,
		GrantedBy:      req.GrantedBy,
		Reason:         req.Reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*grant.Grant, error) {
	g, err := a.buildGrant(ctx, req)
	if err != nil {
		return nil, err
	}

	// One grant row per user and permission name: a second row would be
	// a data integrity violation once the resolver sees it.
	if _, err := a.eng.Store().GetGrantByName(ctx.Context(), g.TenantID, g.UserID, g.PermissionName); err == nil {
		return nil, mapError(bastion.ErrDuplicateGrant)
	} else if !isNotFound(err) {
		return nil, mapError(err)
	}

	if err := a.eng.Store().CreateGrant(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantCreated(ctx.Context(), g)
	}
	a.eng.InvalidateUser(ctx.Context(), g.UserID)

	return g, ctx.JSON(http.StatusCreated, g)
}

func (a *API) upsertGrant(ctx forge.Context, req *UpsertGrantRequest) (*grant.Grant, error) {
	g, err := a.buildGrant(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().UpsertGrant(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantCreated(ctx.Context(), g)
	}
	a.eng.InvalidateUser(ctx.Context(), g.UserID)

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) getGrant(ctx forge.Context, _ *GetGrantRequest) (*grant.Grant, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	g, err := a.eng.Store().GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) revokeGrant(ctx forge.Context, _ *GetGrantRequest) (*struct{}, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	g, err := a.eng.Store().GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().DeleteGrant(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantRevoked(ctx.Context(), g)
	}
	a.eng.InvalidateUser(ctx.Context(), g.UserID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) (*ListResponse[*grant.Grant], error) {
	_, tenantID := bastion.TenantScope(ctx.Context())
	filter := &grant.ListFilter{
		TenantID:       tenantID,
		UserID:         req.UserID,
		PermissionName: req.PermissionName,
		IsGranted:      req.IsGranted,
		Limit:          defaultLimit(req.Limit),
		Offset:         req.Offset,
	}

	grants, err := a.eng.Store().ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*grant.Grant]{Items: grants, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}
