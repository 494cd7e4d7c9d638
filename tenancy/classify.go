package tenancy

import "strings"

// RouteClass determines how the middleware pipeline treats a path.
type RouteClass string

const (
	// RoutePublic requires no tenant and no credential.
	RoutePublic RouteClass = "public"

	// RoutePublicPlatform is platform-level but anonymous: subdomain
	// validation, the public school directory, by-subdomain lookups.
	RoutePublicPlatform RouteClass = "public_platform"

	// RoutePlatformAdmin requires a platform_admin credential and never
	// builds a tenant context.
	RoutePlatformAdmin RouteClass = "platform_admin"

	// RouteTenantScoped requires a resolved school before the handler runs.
	RouteTenantScoped RouteClass = "tenant_scoped"
)

// Classification tables. Fixed at startup; first match wins in the order
// public > public platform > platform admin > tenant scoped.
var (
	publicExact = map[string]struct{}{
		"/":                        {},
		"/healthz":                 {},
		"/readyz":                  {},
		"/api/v1/status":           {},
		"/api/v1/auth/login":       {},
		"/api/v1/auth/logout":      {},
		"/api/v1/schools/register": {},
	}

	publicPrefixes = []string{
		"/api/docs",
	}

	publicPlatformExact = map[string]struct{}{
		"/api/v1/schools/validate-subdomain": {},
		"/api/v1/schools/suggest-subdomains": {},
		"/api/v1/schools/directory":          {},
	}

	publicPlatformPrefixes = []string{
		"/api/v1/schools/by-subdomain/",
	}

	platformAdminPrefix = "/api/v1/platform"
)

// Classify assigns a route class to a request path. Everything that is not
// explicitly public or platform-level is tenant scoped, so a forgotten route
// fails closed on tenant resolution rather than open.
func Classify(path string) RouteClass {
	p := normalizePath(path)

	if _, ok := publicExact[p]; ok {
		return RoutePublic
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return RoutePublic
		}
	}

	if _, ok := publicPlatformExact[p]; ok {
		return RoutePublicPlatform
	}
	for _, prefix := range publicPlatformPrefixes {
		if strings.HasPrefix(p, prefix) {
			return RoutePublicPlatform
		}
	}

	if p == platformAdminPrefix || strings.HasPrefix(p, platformAdminPrefix+"/") {
		return RoutePlatformAdmin
	}

	return RouteTenantScoped
}

// normalizePath trims a trailing slash so /healthz/ classifies like /healthz.
// The root path stays as-is.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
