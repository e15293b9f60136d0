// Package docs holds the Swagger 2.0 document served at /swagger/*. Keep it
// in step with the swag annotations on the handlers.
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
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.livenessResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe: database and, when configured, Redis",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.readinessResponse"}}
                }
            }
        },
        "/task": {
            "get": {
                "produces": ["application/json"],
                "tags": ["task"],
                "summary": "List all tasks",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.taskResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            },
            "post": {
                "security": [{"TokenAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["task"],
                "summary": "Create a task",
                "parameters": [
                    {"type": "string", "description": "Idempotency key to prevent duplicate submissions", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Task", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.taskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        },
        "/task/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["task"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "integer", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.deleteTaskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        },
        "/user/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Login",
                "parameters": [
                    {"description": "Email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        },
        "/user/logout": {
            "post": {
                "security": [{"TokenAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        },
        "/user/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Login",
                "parameters": [
                    {"description": "Email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        },
        "/user/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "Email and password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httperr.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httperr.Response"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.dependencyStatus": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "status": {"type": "string"}}
        },
        "handlers.livenessResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}}
        },
        "handlers.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handlers.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.accountResponse": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "id": {"type": "integer"}}
        },
        "handler.createTaskRequest": {
            "type": "object",
            "properties": {"description": {"type": "string", "maxLength": 1000}}
        },
        "handler.credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.credentialsRequest": {
            "type": "object",
            "required": ["user"],
            "properties": {"user": {"$ref": "#/definitions/handler.credentials"}}
        },
        "handler.deleteTaskResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}}
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "id": {"type": "integer"}, "token": {"type": "string"}}
        },
        "handler.taskResponse": {
            "type": "object",
            "properties": {"created_at": {"type": "string"}, "description": {"type": "string"}, "id": {"type": "integer"}}
        },
        "httperr.Body": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "integer"}}
        },
        "httperr.Response": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/httperr.Body"}}
        }
    },
    "securityDefinitions": {
        "TokenAuth": {
            "description": "Raw JWT as returned by /user/login. A \"Bearer \" prefix is accepted.",
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
	Title:            "Task API",
	Description:      "Task tracking REST API with signup, login and token-gated task creation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
