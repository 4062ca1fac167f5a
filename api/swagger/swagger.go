package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Announcements API",
        "description": "Time-bounded announcements published by teachers",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Announcements", "description": "Announcement management and the active view"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check (pings the store)",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/announcements/": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements ordered by expire_date",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Announcement"}}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Create announcement",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAnnouncementRequest"}},
                    {"name": "expire_date", "in": "query", "required": true, "type": "string", "description": "Expiration date (YYYY-MM-DD)"},
                    {"name": "start_date", "in": "query", "required": false, "type": "string", "description": "Start date (YYYY-MM-DD)"},
                    {"name": "teacher_username", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Announcement"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/announcements/active": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements active today",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Announcement"}}}
                }
            }
        },
        "/announcements/{id}": {
            "put": {
                "tags": ["Announcements"],
                "summary": "Partially update announcement",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/UpdateAnnouncementRequest"}},
                    {"name": "expire_date", "in": "query", "required": false, "type": "string"},
                    {"name": "start_date", "in": "query", "required": false, "type": "string", "description": "Empty value clears the start date"},
                    {"name": "teacher_username", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Announcement"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete announcement",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "teacher_username", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Unknown teacher", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Announcement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "start_date": {"type": "string", "x-nullable": true},
                "expire_date": {"type": "string"},
                "created_by": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "CreateAnnouncementRequest": {
            "type": "object",
            "required": ["title", "message"],
            "properties": {
                "title": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "UpdateAnnouncementRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
