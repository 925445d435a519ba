package api

// CheckResponse is the response for an authorization check.
type CheckResponse struct {
	Allowed    bool   `json:"allowed" description:"Whether the request is allowed"`
	Decision   string `json:"decision" description:"Decision code (allow, bypass, deny_explicit, deny_no_grant, indeterminate)"`
	Reason     string `json:"reason,omitempty" description:"Human-readable reason"`
	Permission string `json:"permission,omitempty" description:"Matched permission name"`
	Source     string `json:"source,omitempty" description:"Where the permission came from (role, direct, bypass)"`
	RoleName   string `json:"role_name,omitempty" description:"Granting role, when source is role"`
	EvalTimeNs int64  `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// BatchCheckResponse contains results for multiple checks.
type BatchCheckResponse struct {
	Results []CheckResponse `json:"results" description:"Check results in request order"`
}

// PurgeResponse reports how many rows a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted" description:"Number of events deleted"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}
