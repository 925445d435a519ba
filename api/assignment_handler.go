package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/role"
)

func (a *API) registerAssignmentRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("assignments"))

	if err := g.POST("/assignments", a.assignRole,
		forge.WithSummary("Assign role"),
		forge.WithDescription("Assigns a role to a user, optionally with an expiration."),
		forge.WithOperationID("assignRole"),
		forge.WithRequestSchema(AssignRoleRequest{}),
		forge.WithCreatedResponse(&assignment.Assignment{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/assignments", a.unassignRole,
		forge.WithSummary("Unassign role"),
		forge.WithDescription("Removes a role from a user."),
		forge.WithOperationID("unassignRole"),
		forge.WithRequestSchema(UnassignRoleRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/assignments", a.listAssignments,
		forge.WithSummary("List assignments"),
		forge.WithDescription("Lists role assignments with optional filters."),
		forge.WithOperationID("listAssignments"),
		forge.WithRequestSchema(ListAssignmentsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Assignment list", ListResponse[*assignment.Assignment]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/users/:userId/roles", a.listUserRoles,
		forge.WithSummary("List user roles"),
		forge.WithDescription("Returns the unexpired roles assigned to a user."),
		forge.WithOperationID("listUserRoles"),
		forge.WithResponseSchema(http.StatusOK, "Assigned roles", []*role.Role{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) assignRole(ctx forge.Context, req *AssignRoleRequest) (*assignment.Assignment, error) {
	if req.RoleID == "" || req.UserID == "" {
		return nil, forge.BadRequest("role_id and user_id are required")
	}

	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	// The role must exist before it is handed out.
	if _, err := a.eng.Store().GetRole(ctx.Context(), roleID); err != nil {
		return nil, mapError(err)
	}

	appID, tenantID := bastion.TenantScope(ctx.Context())

	existing, err := a.eng.Store().ListRolesForUser(ctx.Context(), tenantID, req.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	for _, rid := range existing {
		if rid == roleID {
			return nil, mapError(bastion.ErrDuplicateAssignment)
		}
	}

	asg := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		TenantID:  tenantID,
		AppID:     appID,
		RoleID:    roleID,
		UserID:    req.UserID,
		GrantedBy: req.GrantedBy,
		CreatedAt: time.Now().UTC(),
	}

	if req.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid expires_at: %v", err))
		}
		asg.ExpiresAt = &exp
	}

	if err := a.eng.Store().CreateAssignment(ctx.Context(), asg); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitRoleAssigned(ctx.Context(), asg)
	}
	a.eng.InvalidateUser(ctx.Context(), req.UserID)

	return asg, ctx.JSON(http.StatusCreated, asg)
}

func (a *API) unassignRole(ctx forge.Context, req *UnassignRoleRequest) (*struct{}, error) {
	if req.RoleID == "" || req.UserID == "" {
		return nil, forge.BadRequest("role_id and user_id are required")
	}

	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	_, tenantID := bastion.TenantScope(ctx.Context())
	if err := a.eng.Store().DeleteAssignmentByUserRole(ctx.Context(), tenantID, req.UserID, roleID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitRoleUnassigned(ctx.Context(), &assignment.Assignment{
			TenantID: tenantID,
			RoleID:   roleID,
			UserID:   req.UserID,
		})
	}
	a.eng.InvalidateUser(ctx.Context(), req.UserID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAssignments(ctx forge.Context, req *ListAssignmentsRequest) (*ListResponse[*assignment.Assignment], error) {
	_, tenantID := bastion.TenantScope(ctx.Context())
	filter := &assignment.ListFilter{
		TenantID: tenantID,
		UserID:   req.UserID,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}
	if req.RoleID != "" {
		rid, err := id.ParseRoleID(req.RoleID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
		}
		filter.RoleID = rid
	}

	asgs, err := a.eng.Store().ListAssignments(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.eng.Store().CountAssignments(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*assignment.Assignment]{Items: asgs, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listUserRoles(ctx forge.Context, _ *ListUserRolesRequest) ([]*role.Role, error) {
	userID := ctx.Param("userId")
	if userID == "" {
		return nil, forge.BadRequest("userId is required")
	}

	_, tenantID := bastion.TenantScope(ctx.Context())
	roleIDs, err := a.eng.Store().ListRolesForUser(ctx.Context(), tenantID, userID)
	if err != nil {
		return nil, mapError(err)
	}

	roles := make([]*role.Role, 0, len(roleIDs))
	for _, rid := range roleIDs {
		r, err := a.eng.Store().GetRole(ctx.Context(), rid)
		if err != nil {
			return nil, mapError(err)
		}
		roles = append(roles, r)
	}

	return roles, ctx.JSON(http.StatusOK, roles)
}
