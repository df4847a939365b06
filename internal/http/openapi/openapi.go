// Package openapi embeds the OpenAPI document served on /openapi.yaml.
package openapi

import _ "embed"

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte
