package models

// Module names gate access to feature areas of the platform. A school's
// enabled module set is stored per school and checked on every
// tenant-scoped request.
const (
	ModuleSIS           = "student_information_system"
	ModuleFinance       = "finance_management"
	ModuleAcademic      = "academic_management"
	ModuleCommunication = "communication"
	ModuleReporting     = "reporting"
)

// KnownModules lists every module the platform understands.
var KnownModules = []string{
	ModuleSIS,
	ModuleFinance,
	ModuleAcademic,
	ModuleCommunication,
	ModuleReporting,
}

// DefaultModules is the fallback set applied when a school has no module
// configuration rows. It must never be empty: every school gets at least
// the core feature areas until a platform admin narrows them.
func DefaultModules() []string {
	return []string{ModuleSIS, ModuleFinance, ModuleAcademic}
}

// IsKnownModule returns true for a module name the platform understands
func IsKnownModule(name string) bool {
	for _, m := range KnownModules {
		if m == name {
			return true
		}
	}
	return false
}
