package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/permission"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the user can perform the action on the resource. An indeterminate decision means the authorization data is not loaded yet and must not be read as a deny."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 otherwise (including indeterminate)."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("authzBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/users/:userId/permissions", a.resolveUser,
		forge.WithSummary("Resolve user permissions"),
		forge.WithDescription("Returns the user's full effective permission set with source attribution."),
		forge.WithOperationID("authzResolveUser"),
		forge.WithResponseSchema(http.StatusOK, "Effective permission set", bastion.Resolution{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.UserID == "" || req.Resource == "" || req.Action == "" {
		return nil, forge.BadRequest("user_id, resource, and action are required")
	}

	creq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), creq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.UserID == "" || req.Resource == "" || req.Action == "" {
		return nil, forge.BadRequest("user_id, resource, and action are required")
	}

	creq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), creq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i, c := range req.Checks {
		creq, err := toCheckRequest(&c)
		if err != nil {
			return nil, err
		}
		result, err := a.eng.Check(ctx.Context(), creq)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toCheckResponse(result)
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) resolveUser(ctx forge.Context, _ *ResolveUserRequest) (*bastion.Resolution, error) {
	userID := ctx.Param("userId")
	if userID == "" {
		return nil, forge.BadRequest("userId is required")
	}

	res, err := a.eng.ResolveUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return res, ctx.JSON(http.StatusOK, res)
}

func toCheckRequest(r *CheckRequest) (*bastion.CheckRequest, error) {
	req := &bastion.CheckRequest{
		UserID:   r.UserID,
		Resource: r.Resource,
		Action:   r.Action,
	}
	if r.Scope != "" {
		scope, err := permission.ParseScope(r.Scope)
		if err != nil {
			return nil, forge.BadRequest(err.Error())
		}
		req.Scope = scope
	}
	return req, nil
}

func toCheckResponse(r *bastion.CheckResult) *CheckResponse {
	return &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		Permission: r.Permission,
		Source:     string(r.Source),
		RoleName:   r.RoleName,
		EvalTimeNs: r.EvalTimeNs,
	}
}
