// Package docs registers the OpenAPI description served under /swagger/.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and store check",
                "responses": {
                    "200": {"description": "data.status: ok", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns stored registration records, newest first.",
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "List registrations",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 50, max 500)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListRegistrationsSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the full flow for one email: create record, register, send code, read the code from the mailbox, sign in. Blocks until the entry completes or fails.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "Register one entry",
                "parameters": [
                    {"description": "Entry; event_api_id defaults to the configured event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateRegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.RegistrationSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "502": {"description": "error.code: provider_rejected", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "504": {"description": "error.code: verification_code_not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Processes entries one at a time in input order. One entry failing never stops the run. The body is a JSON array of {email, firstName, lastName} or CSV (Content-Type text/csv). With Accept application/x-ndjson the response streams one progress event per line and ends with a result event.",
                "consumes": ["application/json", "text/csv"],
                "produces": ["application/json", "application/x-ndjson"],
                "tags": ["registrations"],
                "summary": "Register a list of entries",
                "parameters": [
                    {"type": "string", "description": "Event API id; defaults to the configured event", "name": "event_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.BulkSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "415": {"description": "error.code: unsupported_media_type", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/registrations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["registrations"],
                "summary": "Get a registration",
                "parameters": [
                    {"type": "string", "description": "Registration ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RegistrationSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["registrations"],
                "summary": "Delete a registration",
                "parameters": [
                    {"type": "string", "description": "Registration ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/gmail/auth-url": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the Google consent URL requesting offline, read-only Gmail access. Open it, approve, then post the returned code to /gmail/token.",
                "produces": ["application/json"],
                "tags": ["gmail"],
                "summary": "Get the Gmail consent URL",
                "parameters": [
                    {"type": "string", "description": "Opaque state echoed back by Google; generated when empty", "name": "state", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.AuthURLSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/gmail/token": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Trades the code from the consent redirect for a long-lived refresh token. Store it as GMAIL_REFRESH_TOKEN.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["gmail"],
                "summary": "Exchange an authorization code for a refresh token",
                "parameters": [
                    {"description": "Authorization code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ExchangeCodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RefreshTokenSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "502": {"description": "error.code: provider_rejected", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: service_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.AuthURLData": {
            "type": "object",
            "properties": {"auth_url": {"type": "string"}, "state": {"type": "string"}}
        },
        "controllers.AuthURLSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/controllers.AuthURLData"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.BulkSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/domain.BulkResult"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.CreateRegistrationRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "event_api_id": {"type": "string"}
            }
        },
        "controllers.ExchangeCodeRequest": {
            "type": "object",
            "properties": {"code": {"type": "string"}}
        },
        "controllers.ListRegistrationsData": {
            "type": "object",
            "properties": {
                "registrations": {"type": "array", "items": {"$ref": "#/definitions/domain.Registration"}},
                "pagination": {"$ref": "#/definitions/helpers.PaginationMeta"}
            }
        },
        "controllers.ListRegistrationsSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/controllers.ListRegistrationsData"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.RefreshTokenData": {
            "type": "object",
            "properties": {"refresh_token": {"type": "string"}}
        },
        "controllers.RefreshTokenSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/controllers.RefreshTokenData"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "controllers.RegistrationSuccessResponse": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/domain.Registration"}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "domain.BulkFailure": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "error": {"type": "string"}}
        },
        "domain.BulkResult": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "successful": {"type": "array", "items": {"$ref": "#/definitions/domain.Registration"}},
                "failed": {"type": "array", "items": {"$ref": "#/definitions/domain.BulkFailure"}}
            }
        },
        "domain.Registration": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "event_api_id": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "code_sent", "signed_in", "completed", "failed"]},
                "verification_code": {"type": "string"},
                "luma_response": {"type": "object"},
                "error_message": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "helpers.PaginationMeta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the operator token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Registrar API",
	Description:      "Registers attendees to Luma events: register, send code, read the code from Gmail, sign in.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
