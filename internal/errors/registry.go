package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryRoute,
		Message:  "Route not found",
		Detail:   "No route matches the requested URL.",
	},
	"E101": {
		Category: CategoryRoute,
		Message:  "Missing route parameter",
		Detail:   "A required route parameter was not provided.",
	},
	"E102": {
		Category: CategoryRoute,
		Message:  "Pages directory not found",
		Detail:   "The configured pages root does not exist or is not readable.",
	},
	"E103": {
		Category: CategoryRoute,
		Message:  "Invalid page file",
		Detail:   "The page file could not be parsed for exported capabilities.",
	},
	"E104": {
		Category: CategoryRoute,
		Message:  "Duplicate route",
		Detail:   "Multiple page files resolve to the same URL pattern.",
	},

	// ============================================
	// Handler Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryHandler,
		Message:  "No handler for method",
		Detail:   "The API route defines no handler for the request method and no fallback handler.",
	},
	"E121": {
		Category: CategoryHandler,
		Message:  "Page module not registered",
		Detail:   "No module descriptor was registered for the matched route's source file.",
	},
	"E122": {
		Category: CategoryHandler,
		Message:  "No renderable export",
		Detail:   "The page module declares neither a template nor a component.",
	},
	"E123": {
		Category: CategoryHandler,
		Message:  "Data fetch failed",
		Detail:   "The page's data-fetching function returned an error.",
	},

	// ============================================
	// Render Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The component panicked or produced unserializable markup.",
	},
	"E141": {
		Category: CategoryRender,
		Message:  "Static path expansion failed",
		Detail:   "GetStaticPaths returned an error or a parameter set missing a declared parameter.",
	},
	"E142": {
		Category: CategoryRender,
		Message:  "Template render failed",
		Detail:   "The template file could not be loaded or executed with the page's props.",
	},

	// ============================================
	// Hook Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryHooks,
		Message:  "Hook call order changed",
		Detail:   "Hooks must be called unconditionally and in the same order on every render of a component.",
	},

	// ============================================
	// Compile / Preprocess Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCompile,
		Message:  "Preprocess rewrite failed",
		Detail:   "A markup literal block could not be rewritten. The file was left unmodified.",
	},
	"E181": {
		Category: CategoryCompile,
		Message:  "Build failed",
		Detail:   "The application did not compile. See the compiler output for details.",
	},

	// ============================================
	// Configuration Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryConfig,
		Message:  "Invalid nextgo.json",
		Detail:   "The nextgo.json configuration file is malformed.",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid or already in use.",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Export publish misconfigured",
		Detail:   "Publishing requires an S3 bucket in the export section of nextgo.json.",
	},

	// ============================================
	// CLI Errors (E220-E239)
	// ============================================

	"E220": {
		Category: CategoryCLI,
		Message:  "Not a nextgo project",
		Detail:   "The current directory is not a nextgo project. Run this command from a directory with nextgo.json.",
	},
	"E221": {
		Category: CategoryCLI,
		Message:  "Export failed",
		Detail:   "The static export did not complete. Check the output for the failing route.",
	},
	"E222": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		Detail:   "The requested scaffold template is not built into this CLI.",
	},
	"E223": {
		Category: CategoryCLI,
		Message:  "Project directory already exists",
		Detail:   "Refusing to scaffold into an existing directory.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
