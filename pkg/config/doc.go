/*
Package config provides application configuration for Atlas.

Configuration is loaded from a YAML file, defaults are applied, values
may be overridden by ATLAS_* environment variables, and the result is
validated before use.

Loading:

	cfg, err := config.LoadConfig("atlas.yaml")
	if err != nil {
		log.Fatal(err)
	}

For application startup, the package also provides a global singleton:

	if err := config.Initialize(cfgFile); err != nil {
		return err
	}
	cfg := config.GetConfig()

Environment overrides follow the naming convention ATLAS_SECTION_FIELD,
for example ATLAS_POLICIES_DIRECTORY or ATLAS_DETERMINATIONS_SQLITE_PATH.
Environment variables always take precedence over file values.
*/
package config
