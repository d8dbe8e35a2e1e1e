// Package docs holds the OpenAPI description served under /swagger.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "register", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Email or mobile number already registered", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with email or mobile number and PIN",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/google/exchange-code": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange a Google authorization code for an access token",
                "parameters": [{"in": "body", "name": "code", "required": true, "schema": {"$ref": "#/definitions/dto.ExchangeCodeRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Get the caller's account",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}}}
            }
        },
        "/me/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Get the caller's balance",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceResponse"}}}
            }
        },
        "/me/entries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "List the caller's ledger entries",
                "parameters": [
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListEntriesResponse"}}}
            }
        },
        "/me/send-money": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Send money to another account",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SendMoneyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LedgerEntryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Recipient not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/me/cash-out": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Cash out from the caller's account",
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CashOutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LedgerEntryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "List non-admin accounts",
                "parameters": [
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAccountsResponse"}}}
            }
        },
        "/admin/accounts/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Search non-admin accounts by name",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query", "required": true},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAccountsResponse"}}}
            }
        },
        "/admin/accounts/{accountID}/status": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Change an account's status",
                "parameters": [
                    {"type": "string", "name": "accountID", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.SetStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "mobileNumber", "pin", "role"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "mobileNumber": {"type": "string"},
                "pin": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "agent"]}
            }
        },
        "dto.RegisterResponse": {
            "type": "object",
            "properties": {"accountID": {"type": "string"}, "status": {"type": "string"}, "message": {"type": "string"}}
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["identifier", "pin"],
            "properties": {"identifier": {"type": "string"}, "pin": {"type": "string"}}
        },
        "dto.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "expiresAt": {"type": "integer"}, "accountID": {"type": "string"}, "role": {"type": "string"}}
        },
        "dto.ExchangeCodeRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {"code": {"type": "string"}}
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "mobileNumber": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"},
                "balance": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "dto.BalanceResponse": {
            "type": "object",
            "properties": {"accountID": {"type": "string"}, "balance": {"type": "integer"}}
        },
        "dto.SendMoneyRequest": {
            "type": "object",
            "required": ["recipientMobile", "amount"],
            "properties": {"recipientMobile": {"type": "string"}, "amount": {"type": "integer"}}
        },
        "dto.CashOutRequest": {
            "type": "object",
            "required": ["amount"],
            "properties": {"amount": {"type": "integer"}}
        },
        "dto.LedgerEntryResponse": {
            "type": "object",
            "properties": {
                "entryID": {"type": "string"},
                "kind": {"type": "string"},
                "accountID": {"type": "string"},
                "counterpartyID": {"type": "string"},
                "amount": {"type": "integer"},
                "balanceAfter": {"type": "integer"},
                "idempotencyKey": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "dto.ListEntriesResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/dto.LedgerEntryResponse"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "dto.ListAccountsResponse": {
            "type": "object",
            "properties": {
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/dto.AccountResponse"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "dto.SetStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["active", "blocked"]}}
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Secure Pay API",
	Description:      "Account ledger for a mobile-money service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
