package errors

import (
	"sort"
	"sync"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

var registryMu sync.RWMutex

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Failed to read engine configuration",
		Detail:   "The configuration file exists but could not be read or parsed.",
		DocURL:   "https://vango.dev/docs/engine/errors/E120",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid engine configuration",
		Detail:   "One or more configuration values are out of range.",
		DocURL:   "https://vango.dev/docs/engine/errors/E122",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file passed on the command line does not exist.",
		DocURL:   "https://vango.dev/docs/engine/errors/E141",
	},

	// ============================================
	// Render Errors (E200-E219)
	// ============================================

	"E201": {
		Category: CategoryConfig,
		Message:  "Server transition not configured",
		Detail:   "RenderModule and RenderModuleFactory require the root module to import app.ServerTransition(appID) so the server-rendered page can be picked up by the client application.",
		DocURL:   "https://vango.dev/docs/engine/errors/E201",
	},
	"E202": {
		Category: CategoryPlatform,
		Message:  "Platform already destroyed",
		Detail:   "A platform is single use. Create a new platform for every render.",
		DocURL:   "https://vango.dev/docs/engine/errors/E202",
	},
	"E203": {
		Category: CategoryPlatform,
		Message:  "Module already bootstrapped on this platform",
		Detail:   "A platform hosts at most one application module.",
		DocURL:   "https://vango.dev/docs/engine/errors/E203",
	},
	"E204": {
		Category: CategoryRender,
		Message:  "Before-app-serialized hook failed",
		Detail:   "A hook registered under app.BeforeAppSerialized returned an error or panicked. The failure is logged and the render continues.",
		DocURL:   "https://vango.dev/docs/engine/errors/E204",
	},
	"E205": {
		Category: CategoryConfig,
		Message:  "Module compilation failed",
		Detail:   "The module descriptor could not be compiled into a module factory.",
		DocURL:   "https://vango.dev/docs/engine/errors/E205",
	},
	"E206": {
		Category: CategoryPlatform,
		Message:  "Injector destroyed",
		Detail:   "Services cannot be resolved from an injector whose platform has been destroyed.",
		DocURL:   "https://vango.dev/docs/engine/errors/E206",
	},
	"E207": {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "A bootstrapped component could not be rendered into its host element.",
		DocURL:   "https://vango.dev/docs/engine/errors/E207",
	},

	// ============================================
	// Store Errors (E300-E319)
	// ============================================

	"E301": {
		Category: CategoryStore,
		Message:  "Snapshot store operation failed",
		Detail:   "Reading or writing a rendered snapshot failed.",
		DocURL:   "https://vango.dev/docs/engine/errors/E301",
	},
	"E302": {
		Category: CategoryStore,
		Message:  "Snapshot store unavailable",
		Detail:   "The circuit breaker guarding the remote store is open after repeated failures.",
		DocURL:   "https://vango.dev/docs/engine/errors/E302",
	},

	// ============================================
	// CLI Errors (E400-E419)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Invalid prerender manifest",
		Detail:   "The manifest must be a YAML document with a non-empty routes list.",
		DocURL:   "https://vango.dev/docs/engine/errors/E401",
	},
	"E402": {
		Category: CategoryCLI,
		Message:  "Prerender finished with failures",
		Detail:   "One or more routes could not be rendered or stored.",
		DocURL:   "https://vango.dev/docs/engine/errors/E402",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[code] = template
}
