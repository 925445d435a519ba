package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
)

func (a *API) registerPermissionRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("permissions"))

	if err := g.POST("/permissions", a.createPermission,
		forge.WithSummary("Create permission"),
		forge.WithDescription("Creates a permission named resource.action.scope. When a resource type is registered for the resource, the action and scope must be valid for it."),
		forge.WithOperationID("createPermission"),
		forge.WithRequestSchema(CreatePermissionRequest{}),
		forge.WithCreatedResponse(&permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/permissions/:permissionId", a.getPermission,
		forge.WithSummary("Get permission"),
		forge.WithDescription("Returns details of a specific permission."),
		forge.WithOperationID("getPermission"),
		forge.WithResponseSchema(http.StatusOK, "Permission details", &permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/permissions/:permissionId", a.updatePermission,
		forge.WithSummary("Update permission"),
		forge.WithDescription("Updates an existing permission. The name triplet is immutable; system permissions are immutable entirely."),
		forge.WithOperationID("updatePermission"),
		forge.WithRequestSchema(UpdatePermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated permission", &permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/permissions/:permissionId", a.deletePermission,
		forge.WithSummary("Delete permission"),
		forge.WithDescription("Deletes a permission. System permissions cannot be deleted."),
		forge.WithOperationID("deletePermission"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/permissions", a.listPermissions,
		forge.WithSummary("List permissions"),
		forge.WithDescription("Lists permissions with optional filters."),
		forge.WithOperationID("listPermissions"),
		forge.WithRequestSchema(ListPermissionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission list", ListResponse[*permission.Permission]{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createPermission(ctx forge.Context, req *CreatePermissionRequest) (*permission.Permission, error) {
	if req.Resource == "" || req.Action == "" || req.Scope == "" {
		return nil, forge.BadRequest("resource, action, and scope are required")
	}

	scope, err := permission.ParseScope(req.Scope)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	appID, tenantID := bastion.TenantScope(ctx.Context())
	now := time.Now().UTC()
	p := &permission.Permission{
		ID:          id.NewPermissionID(),
		TenantID:    tenantID,
		AppID:       appID,
		Name:        permission.FormatName(req.Resource, req.Action, scope),
		Description: req.Description,
		Resource:    req.Resource,
		Action:      req.Action,
		Scope:       scope,
		Conditions:  req.Conditions,
		IsSystem:    req.IsSystem,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := permission.Validate(p); err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	// The registered resource type, when present, constrains the
	// action/scope pairs a permission may use.
	rt, err := a.eng.Store().GetResourceTypeByName(ctx.Context(), tenantID, req.Resource)
	switch {
	case err == nil:
		if !rt.Allows(req.Action, scope) {
			return nil, mapError(fmt.Errorf("%w: %s on resource type %s", bastion.ErrActionNotAllowed, p.Name, rt.Name))
		}
	case isNotFound(err):
		// Unregistered resources accept any action and scope.
	default:
		return nil, mapError(err)
	}

	if err := a.eng.Store().CreatePermission(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitPermissionCreated(ctx.Context(), p)
	}
	a.eng.InvalidateTenant(ctx.Context())

	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) getPermission(ctx forge.Context, _ *GetPermissionRequest) (*permission.Permission, error) {
	permID, err := id.ParsePermissionID(ctx.Param("permissionId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission ID: %v", err))
	}

	p, err := a.eng.Store().GetPermission(ctx.Context(), permID)
	if err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) updatePermission(ctx forge.Context, req *UpdatePermissionRequest) (*permission.Permission, error) {
	permID, err := id.ParsePermissionID(ctx.Param("permissionId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission ID: %v", err))
	}

	p, err := a.eng.Store().GetPermission(ctx.Context(), permID)
	if err != nil {
		return nil, mapError(err)
	}
	if p.IsSystem {
		return nil, mapError(bastion.ErrSystemPermissionImmutable)
	}

	if req.Description != "" {
		p.Description = req.Description
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Conditions != nil {
		p.Conditions = req.Conditions
	}
	p.UpdatedAt = time.Now().UTC()

	if err := a.eng.Store().UpdatePermission(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitPermissionUpdated(ctx.Context(), p)
	}
	a.eng.InvalidateTenant(ctx.Context())

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) deletePermission(ctx forge.Context, _ *GetPermissionRequest) (*struct{}, error) {
	permID, err := id.ParsePermissionID(ctx.Param("permissionId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission ID: %v", err))
	}

	p, err := a.eng.Store().GetPermission(ctx.Context(), permID)
	if err != nil {
		return nil, mapError(err)
	}
	if p.IsSystem {
		return nil, mapError(bastion.ErrSystemPermissionImmutable)
	}

	if err := a.eng.Store().DeletePermission(ctx.Context(), permID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitPermissionDeleted(ctx.Context(), permID)
	}
	a.eng.InvalidateTenant(ctx.Context())

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listPermissions(ctx forge.Context, req *ListPermissionsRequest) (*ListResponse[*permission.Permission], error) {
	_, tenantID := bastion.TenantScope(ctx.Context())
	filter := &permission.ListFilter{
		TenantID: tenantID,
		Resource: req.Resource,
		Action:   req.Action,
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}
	if req.Scope != "" {
		scope, err := permission.ParseScope(req.Scope)
		if err != nil {
			return nil, forge.BadRequest(err.Error())
		}
		filter.Scope = scope
	}

	perms, err := a.eng.Store().ListPermissions(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountPermissions(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*permission.Permission]{Items: perms, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}
