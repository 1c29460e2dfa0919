package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern tags the context with the chi route pattern so metrics and
// logs label by template ("/api/v1/sales/{id}") instead of raw paths.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the tagged route pattern, or "" when the
// request never matched a route.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	pattern, _ := ctx.Value(routePatternKey{}).(string)
	return pattern
}
