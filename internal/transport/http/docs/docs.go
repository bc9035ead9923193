package docs

import _ "embed"

// OpenAPI is the API description served at /swagger/doc.json.
//
//go:embed openapi.json
var OpenAPI []byte
