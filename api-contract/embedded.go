// Package apicontract embeds the OpenAPI contract of the ecom HTTP API.
package apicontract

import _ "embed"

//go:embed openapi.yml
var spec []byte

// GetSpecBytes returns the raw YAML contract. Callers must not modify it.
func GetSpecBytes() []byte { return spec }
