package preflight

import (
	"context"
	"path/filepath"

	"hitqueue/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.SocketPath != "" {
		results = append(results, CheckDirectoryAccess("Socket directory", filepath.Dir(cfg.Paths.SocketPath)))
	}
	results = append(results, CheckEndpoint(ctx, cfg.Delivery.Endpoint, cfg.DeliveryTimeout()))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
