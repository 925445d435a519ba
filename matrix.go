package bastion

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CellState is one cell of a permission matrix.
type CellState string

const (
	// CellGranted means the permission is in the user's effective set.
	CellGranted CellState = "granted"

	// CellDenied means a direct deny grant excludes the permission.
	CellDenied CellState = "denied"

	// CellNone means nothing grants or denies the permission.
	CellNone CellState = "none"
)

// Matrix is the users x permissions grid used by the administrative UI
// and exports. Cells holds granted and denied entries only; absent cells
// are CellNone.
type Matrix struct {
	UserIDs     []string                        `json:"user_ids"`
	Permissions []string                        `json:"permissions"`
	Cells       map[string]map[string]CellState `json:"cells"`
	Failed      map[string]string               `json:"failed,omitempty"`
}

// Cell returns the state for one user and permission name.
func (m *Matrix) Cell(userID, permissionName string) CellState {
	if row, ok := m.Cells[userID]; ok {
		if state, ok := row[permissionName]; ok {
			return state
		}
	}
	return CellNone
}

// BuildMatrix resolves each listed user once and assembles the grid.
// Columns are permissionNames when given, otherwise every active catalog
// permission. Users resolve concurrently, bounded by Config.MatrixWorkers.
// One user's bad data never takes down the whole matrix: failures land in
// Failed and the remaining rows fill normally.
func (e *Engine) BuildMatrix(ctx context.Context, userIDs, permissionNames []string) (*Matrix, error) {
	scope := scopeFromContext(ctx)

	names := permissionNames
	if len(names) == 0 {
		catalog, err := e.source.Catalog(ctx, scope.tenantID)
		if err != nil {
			return nil, err
		}
		names = make([]string, 0, catalog.Len())
		for name, p := range catalog.byName {
			if p.IsActive {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}
	columns := make(map[string]struct{}, len(names))
	for _, name := range names {
		columns[name] = struct{}{}
	}

	m := &Matrix{
		UserIDs:     userIDs,
		Permissions: names,
		Cells:       make(map[string]map[string]CellState, len(userIDs)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.matrixWorkers())

	for _, userID := range userIDs {
		g.Go(func() error {
			res, err := e.resolution(gctx, scope.tenantID, userID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if m.Failed == nil {
					m.Failed = make(map[string]string)
				}
				m.Failed[userID] = err.Error()
				return nil
			}
			row := make(map[string]CellState, len(res.Permissions)+len(res.Denied))
			for name := range res.Permissions {
				if _, ok := columns[name]; ok {
					row[name] = CellGranted
				}
			}
			for name := range res.Denied {
				if _, ok := columns[name]; ok {
					row[name] = CellDenied
				}
			}
			m.Cells[userID] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}
