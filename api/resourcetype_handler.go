package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/resourcetype"
)

func (a *API) registerResourceTypeRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("resource-types"))

	if err := g.POST("/resource-types", a.createResourceType,
		forge.WithSummary("Create resource type"),
		forge.WithDescription("Registers a resource type with its valid actions and scopes."),
		forge.WithOperationID("createResourceType"),
		forge.WithRequestSchema(CreateResourceTypeRequest{}),
		forge.WithCreatedResponse(&resourcetype.ResourceType{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/resource-types/seed", a.seedResourceTypes,
		forge.WithSummary("Seed built-in resource types"),
		forge.WithDescription("Registers the built-in resource types for the tenant. Types that already exist are left untouched."),
		forge.WithOperationID("seedResourceTypes"),
		forge.WithResponseSchema(http.StatusOK, "Seeded resource types", []*resourcetype.ResourceType{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/resource-types/:resourceTypeId", a.getResourceType,
		forge.WithSummary("Get resource type"),
		forge.WithDescription("Returns details of a specific resource type."),
		forge.WithOperationID("getResourceType"),
		forge.WithResponseSchema(http.StatusOK, "Resource type details", &resourcetype.ResourceType{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/resource-types/:resourceTypeId", a.updateResourceType,
		forge.WithSummary("Update resource type"),
		forge.WithDescription("Updates an existing resource type."),
		forge.WithOperationID("updateResourceType"),
		forge.WithRequestSchema(UpdateResourceTypeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated resource type", &resourcetype.ResourceType{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/resource-types/:resourceTypeId", a.deleteResourceType,
		forge.WithSummary("Delete resource type"),
		forge.WithDescription("Deletes a resource type."),
		forge.WithOperationID("deleteResourceType"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/resource-types", a.listResourceTypes,
		forge.WithSummary("List resource types"),
		forge.WithDescription("Lists resource types with optional filters."),
		forge.WithOperationID("listResourceTypes"),
		forge.WithRequestSchema(ListResourceTypesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Resource type list", ListResponse[*resourcetype.ResourceType]{}),
		forge.WithErrorResponses(),
	)
}

func parseScopes(raw []string) ([]permission.Scope, error) {
	scopes := make([]permission.Scope, 0, len(raw))
	for _, s := range raw {
		scope, err := permission.ParseScope(s)
		if err != nil {
			return nil, forge.BadRequest(err.Error())
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

func (a *API) createResourceType(ctx forge.Context, req *CreateResourceTypeRequest) (*resourcetype.ResourceType, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	scopes, err := parseScopes(req.Scopes)
	if err != nil {
		return nil, err
	}

	appID, tenantID := bastion.TenantScope(ctx.Context())
	now := time.Now().UTC()
	rt := &resourcetype.ResourceType{
		ID:          id.NewResourceTypeID(),
		TenantID:    tenantID,
		AppID:       appID,
		Name:        req.Name,
		Description: req.Description,
		Actions:     req.Actions,
		Scopes:      scopes,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.eng.Store().CreateResourceType(ctx.Context(), rt); err != nil {
		return nil, mapError(err)
	}

	return rt, ctx.JSON(http.StatusCreated, rt)
}

func (a *API) seedResourceTypes(ctx forge.Context, _ *struct{}) ([]*resourcetype.ResourceType, error) {
	appID, tenantID := bastion.TenantScope(ctx.Context())
	now := time.Now().UTC()

	seeded := make([]*resourcetype.ResourceType, 0)
	for _, rt := range resourcetype.Builtin() {
		if _, err := a.eng.Store().GetResourceTypeByName(ctx.Context(), tenantID, rt.Name); err == nil {
			continue
		} else if !isNotFound(err) {
			return nil, mapError(err)
		}

		rt.ID = id.NewResourceTypeID()
		rt.TenantID = tenantID
		rt.AppID = appID
		rt.CreatedAt = now
		rt.UpdatedAt = now
		if err := a.eng.Store().CreateResourceType(ctx.Context(), rt); err != nil {
			return nil, mapError(err)
		}
		seeded = append(seeded, rt)
	}

	return seeded, ctx.JSON(http.StatusOK, seeded)
}

func (a *API) getResourceType(ctx forge.Context, _ *GetResourceTypeRequest) (*resourcetype.ResourceType, error) {
	rtID, err := id.ParseResourceTypeID(ctx.Param("resourceTypeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid resource type ID: %v", err))
	}

	rt, err := a.eng.Store().GetResourceType(ctx.Context(), rtID)
	if err != nil {
		return nil, mapError(err)
	}

	return rt, ctx.JSON(http.StatusOK, rt)
}

func (a *API) updateResourceType(ctx forge.Context, req *UpdateResourceTypeRequest) (*resourcetype.ResourceType, error) {
	rtID, err := id.ParseResourceTypeID(ctx.Param("resourceTypeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid resource type ID: %v", err))
	}

	rt, err := a.eng.Store().GetResourceType(ctx.Context(), rtID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Description != "" {
		rt.Description = req.Description
	}
	if req.Actions != nil {
		rt.Actions = req.Actions
	}
	if req.Scopes != nil {
		scopes, err := parseScopes(req.Scopes)
		if err != nil {
			return nil, err
		}
		rt.Scopes = scopes
	}
	if req.Metadata != nil {
		rt.Metadata = req.Metadata
	}
	rt.UpdatedAt = time.Now().UTC()

	if err := a.eng.Store().UpdateResourceType(ctx.Context(), rt); err != nil {
		return nil, mapError(err)
	}

	return rt, ctx.JSON(http.StatusOK, rt)
}

func (a *API) deleteResourceType(ctx forge.Context, _ *GetResourceTypeRequest) (*struct{}, error) {
	rtID, err := id.ParseResourceTypeID(ctx.Param("resourceTypeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid resource type ID: %v", err))
	}

	if err := a.eng.Store().DeleteResourceType(ctx.Context(), rtID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listResourceTypes(ctx forge.Context, req *ListResourceTypesRequest) (*ListResponse[*resourcetype.ResourceType], error) {
	_, tenantID := bastion.TenantScope(ctx.Context())
	filter := &resourcetype.ListFilter{
		TenantID: tenantID,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	types, err := a.eng.Store().ListResourceTypes(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountResourceTypes(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*resourcetype.ResourceType]{Items: types, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}
