// Package docs holds the swagger document served at /swagger/*any. It is
// maintained by hand alongside the swag annotations on the controllers.
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
        "/sensor/update": {
            "post": {
                "description": "Sets the current FIRE/SAFE status. FIRE stores a new fire event whose id is returned and broadcast.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sensor"],
                "summary": "Report sensor status",
                "parameters": [
                    {
                        "description": "Sensor status",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/controllers.StatusRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/sensor/location": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Merges a location into the fire event given by eventId, or creates a new located fire event. A bearer token is optional and attributes the report.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sensor"],
                "summary": "Report fire location",
                "parameters": [
                    {
                        "description": "Location",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/controllers.LocationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/sensor/status": {
            "get": {
                "description": "Returns the in-memory FIRE/SAFE status and when it was last set",
                "produces": ["application/json"],
                "tags": ["Sensor"],
                "summary": "Current status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}}
                }
            }
        },
        "/sensor/fire-locations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest located FIRE events, at most 100",
                "produces": ["application/json"],
                "tags": ["Sensor"],
                "summary": "Fire locations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest fire events across all users, at most 100. Admin only.",
                "produces": ["application/json"],
                "tags": ["Logs"],
                "summary": "All fire events",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/logs/my": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Newest fire events reported by the caller, at most 50",
                "produces": ["application/json"],
                "tags": ["Logs"],
                "summary": "My fire events",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/logs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "One fire event. Users may read events they reported; admins may read any.",
                "produces": ["application/json"],
                "tags": ["Logs"],
                "summary": "Get fire event",
                "parameters": [
                    {"type": "integer", "description": "Fire event ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "All user accounts, newest first. Admin only.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Changes username, email, role or password. Username and email stay unique.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Update user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to change",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/controllers.UpdateUserRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Removes a user account. Admins cannot delete themselves.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Delete user",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates a user account with role user and returns a token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "Account",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/services.RegisterInput"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Checks the credentials and returns a token and the user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/controllers.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/controllers.ErrorResponse"}}
                }
            }
        },
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Ping",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}}
                }
            }
        },
        "/health/status": {
            "get": {
                "description": "Database, Redis and MQTT state, websocket subscribers and the current fire status",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Dependency status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/controllers.SuccessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 102000},
                "data": {},
                "message": {"type": "string", "example": "Invalid status. Must be FIRE or SAFE"}
            }
        },
        "controllers.SuccessResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 100000},
                "data": {},
                "message": {"type": "string", "example": "Success"}
            }
        },
        "controllers.StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "example": "FIRE"}
            }
        },
        "controllers.LocationRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string", "example": "Jakarta"},
                "eventId": {"type": "integer", "example": 7},
                "latitude": {"type": "number", "example": -6.2},
                "longitude": {"type": "number", "example": 106.8}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "email": {"type": "string", "example": "admin@fire.com"},
                "password": {"type": "string", "example": "admin123"},
                "username": {"type": "string", "example": "Admin"}
            }
        },
        "controllers.UpdateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "newsecret"},
                "role": {"type": "string", "example": "user"},
                "username": {"type": "string", "example": "alice"}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "secret123"},
                "username": {"type": "string", "example": "alice"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Enter the token with the ` + "`" + `Bearer ` + "`" + ` prefix",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Fire Alert Service API",
	Description:      "Fire sensor ingress, fire event history and realtime alert broadcast",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
