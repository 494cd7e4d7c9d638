package tenancy

import (
	"strings"

	"github.com/oneclass/platform/models"
)

// moduleBySegment maps the first path segment after /api/v1 to the module a
// school must have enabled before the handler runs.
var moduleBySegment = map[string]string{
	"sis":      models.ModuleSIS,
	"finance":  models.ModuleFinance,
	"academic": models.ModuleAcademic,
	"messages": models.ModuleCommunication,
	"reports":  models.ModuleReporting,
}

// RequiredModule returns the module a tenant path requires, or the empty
// string when the path is not module gated. Paths outside the table are
// deliberately allowed; gating a route means adding its segment here.
func RequiredModule(path string) string {
	rest, ok := strings.CutPrefix(normalizePath(path), "/api/v1/")
	if !ok {
		return ""
	}
	segment, _, _ := strings.Cut(rest, "/")
	return moduleBySegment[segment]
}
