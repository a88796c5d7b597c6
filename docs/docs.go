// Package docs holds the Swagger document for the eventloopd HTTP API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "eventloopd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Hub status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/queues": {
            "get": {
                "produces": ["application/json"],
                "summary": "List hosted queues",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.QueuesResponse"}}
                }
            }
        },
        "/queues/{name}": {
            "delete": {
                "summary": "Discard every queued event",
                "parameters": [
                    {"type": "string", "description": "Queue name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Cleared"},
                    "404": {"description": "Unknown queue", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/queues/{name}/events": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Post or synchronously send an event",
                "parameters": [
                    {"type": "string", "description": "Queue name", "name": "name", "in": "path", "required": true},
                    {"description": "Event", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.PostEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "Delivered (sync)", "schema": {"$ref": "#/definitions/types.PostEventResponse"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/types.PostEventResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Unknown queue", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported media type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "429": {"description": "Queue full", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Queue shut down", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "504": {"description": "Send timed out", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/pose": {
            "get": {
                "produces": ["application/json"],
                "summary": "Latest head pose",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PoseResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {"summary": "Liveness probe", "responses": {"200": {"description": "ok"}}}
        },
        "/readyz": {
            "get": {"summary": "Readiness probe", "responses": {"200": {"description": "ready"}, "503": {"description": "not ready"}}}
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid JSON body"}
            }
        },
        "types.PostEventRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "ping"},
                "data": {"type": "object"},
                "sync": {"type": "boolean", "example": false}
            }
        },
        "types.PostEventResponse": {
            "type": "object",
            "properties": {
                "queue": {"type": "string", "example": "ui"},
                "name": {"type": "string", "example": "ping"},
                "delivered": {"type": "boolean", "example": false}
            }
        },
        "types.QueueStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "ui"},
                "capacity": {"type": "integer", "example": 64},
                "depth": {"type": "integer", "example": 0},
                "posted": {"type": "integer", "example": 120},
                "delivered": {"type": "integer", "example": 120},
                "dropped": {"type": "integer", "example": 0},
                "cleared": {"type": "integer", "example": 0},
                "waiting_senders": {"type": "integer", "example": 0},
                "closed": {"type": "boolean", "example": false},
                "handled": {"type": "integer"},
                "failed": {"type": "integer"},
                "panicked": {"type": "integer"},
                "unhandled": {"type": "integer"},
                "running": {"type": "boolean", "example": true}
            }
        },
        "types.QueuesResponse": {
            "type": "object",
            "properties": {
                "queues": {"type": "array", "items": {"$ref": "#/definitions/types.QueueStatus"}}
            }
        },
        "types.Pose": {
            "type": "object",
            "properties": {
                "x": {"type": "number"},
                "y": {"type": "number"},
                "z": {"type": "number"},
                "w": {"type": "number"},
                "seq": {"type": "integer"},
                "time_ns": {"type": "integer"}
            }
        },
        "types.PoseResponse": {
            "type": "object",
            "properties": {
                "pose": {"$ref": "#/definitions/types.Pose"},
                "generation": {"type": "integer", "example": 4231}
            }
        },
        "types.SensorState": {
            "type": "object",
            "properties": {
                "mounted": {"type": "boolean"},
                "temperature": {"type": "number"},
                "battery": {"type": "integer"}
            }
        },
        "types.LoadResult": {
            "type": "object",
            "properties": {
                "path": {"type": "string"},
                "bytes": {"type": "integer"},
                "error": {"type": "string"},
                "worker": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "example": "ready"},
                "uptime_seconds": {"type": "number", "example": 12.5},
                "queues": {"type": "array", "items": {"$ref": "#/definitions/types.QueueStatus"}},
                "pose": {"$ref": "#/definitions/types.PoseResponse"},
                "sensor": {"$ref": "#/definitions/types.SensorState"},
                "pings": {"type": "integer", "example": 3},
                "last_load": {"$ref": "#/definitions/types.LoadResult"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "eventloopd API",
	Description:      "HTTP API for posting events to hosted event queues and reading published state.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
