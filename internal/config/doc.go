// Package config defines the runtime configuration of the server and the
// loaders that read it from HCL or YAML files.
//
// A file only needs to name the settings it changes; everything else keeps
// the value from Default. HCL files may reference environment variables
// through the env object, for example:
//
//	listen    = "${env.MESHVIZ_LISTEN}"
//	log_level = "debug"
package config
