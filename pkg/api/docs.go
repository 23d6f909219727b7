package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/assets/{key}": {"get": {"tags": ["assets"], "summary": "Inspect an asset",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Account absent"}, "422": {"description": "Account does not decode"}, "502": {"description": "Validator unavailable"}}}},
        "/assets/{key}/owner": {"put": {"tags": ["assets"], "summary": "Replace the owner of an asset",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"},
                {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OwnerRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid key"}, "404": {"description": "Account absent"}, "422": {"description": "Patch refused"}}}},
        "/collections/{key}": {"get": {"tags": ["collections"], "summary": "Inspect a collection",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Account absent"}}}},
        "/collections/{key}/authority": {"put": {"tags": ["collections"], "summary": "Replace the update authority of a collection",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"},
                {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AuthorityRequest"}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Account absent"}}}},
        "/token-records/{key}": {"get": {"tags": ["tokens"], "summary": "Inspect a token record",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Account absent"}}}},
        "/token-accounts/{key}": {"get": {"tags": ["tokens"], "summary": "Inspect a token account",
            "parameters": [{"name": "key", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Account absent"}}}},
        "/snapshots": {"get": {"tags": ["snapshots"], "summary": "List snapshots",
            "parameters": [{"name": "address", "in": "query", "required": false, "type": "string"}],
            "responses": {"200": {"description": "OK"}}}},
        "/snapshots/{id}/restore": {"post": {"tags": ["snapshots"], "summary": "Restore a snapshot",
            "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Snapshot not found"}}}}
    },
    "definitions": {
        "OwnerRequest": {"type": "object", "properties": {"owner": {"type": "string"}}},
        "AuthorityRequest": {"type": "object", "properties": {"authority": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "surfpatch REST API",
	Description:      "Inspect and patch asset, collection, token record and token account data on a local surfnet validator.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
