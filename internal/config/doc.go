// Package config handles YAML configuration loading with environment variable substitution.
//
// Two roots exist: ExchangeConfig for the exchange binary and AgentConfig for
// each trading agent. Files support ${VAR} syntax for environment variable
// interpolation; missing optional fields are filled from defaults.go.
package config
