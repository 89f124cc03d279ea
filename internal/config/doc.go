// Package config loads advisor configuration from YAML or CUE files.
//
// YAML files are decoded strictly: unknown keys are errors. CUE files are
// unified with an embedded schema that constrains every threshold to [0, 1]
// before being decoded into the same Config struct. In both cases omitted
// keys keep their Default values.
package config
