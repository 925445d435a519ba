package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
)

func (a *API) registerMatrixRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	return g.POST("/matrix", a.buildMatrix,
		forge.WithSummary("Build permission matrix"),
		forge.WithDescription("Resolves each listed user once and returns the users x permissions grid. Users that fail to resolve land in failed; the remaining rows fill normally."),
		forge.WithOperationID("authzBuildMatrix"),
		forge.WithRequestSchema(BuildMatrixRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission matrix", bastion.Matrix{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) buildMatrix(ctx forge.Context, req *BuildMatrixRequest) (*bastion.Matrix, error) {
	if len(req.UserIDs) == 0 {
		return nil, forge.BadRequest("user_ids cannot be empty")
	}

	m, err := a.eng.BuildMatrix(ctx.Context(), req.UserIDs, req.Permissions)
	if err != nil {
		return nil, mapError(err)
	}

	return m, ctx.JSON(http.StatusOK, m)
}
