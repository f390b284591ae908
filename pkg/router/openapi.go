package router

import (
	"os"
	"path/filepath"

	"dira-directory/backend/pkg/validator"
)

// AddOpenAPIValidation adds OpenAPI request validation to the router when a
// schema file is present. Missing schema is not an error; development setups
// run without it.
func (r *Router) AddOpenAPIValidation(schemaPath string) {
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		r.Logger.Warn("OpenAPI schema file not found, skipping validation", "path", schemaPath)
		return
	}

	v, err := validator.NewOpenAPIValidator(schemaPath)
	if err != nil {
		r.Logger.Error("failed to initialize OpenAPI validator", "error", err.Error())
		return
	}

	r.Engine.Use(v.Middleware())
	r.Logger.Info("OpenAPI validation enabled", "schema", schemaPath)

	// Serve the schema so clients can fetch it
	r.Engine.Static("/api/docs", filepath.Dir(schemaPath))
}
