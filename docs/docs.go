// Package docs registers the control API reference with swag.
// Regenerate with: swag init -g pkg/server/server.go -o docs
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
                "description": "Reports liveness and whether a session cookie is stored",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "System"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.HealthResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/status": {
            "get": {
                "description": "Returns the watch loop snapshot, counters and the next scheduled run",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "System"
                ],
                "summary": "Watcher status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.StatusResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/check": {
            "post": {
                "description": "Runs a stock check now. A failed check still answers 200 with its report",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Checks"
                ],
                "summary": "Trigger a check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.CheckReport"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/history": {
            "get": {
                "description": "Lists recent check runs, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Checks"
                ],
                "summary": "Check history",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Maximum runs to return (1-500)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.HistoryResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/session/refresh": {
            "post": {
                "description": "Starts the login recovery chain in the background",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Session"
                ],
                "summary": "Refresh session",
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/models.AcceptedResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/session/done": {
            "post": {
                "description": "Signals that the login was completed by hand in the visible browser",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Session"
                ],
                "summary": "Complete manual login",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.DeliveredResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/session/cookies": {
            "get": {
                "description": "Reports the cookie file's age, size and session flag",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Session"
                ],
                "summary": "Cookie file status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.CookieStatus"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/models.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "models.ProbeStatus": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "healthy"
                },
                "error": {
                    "type": "string"
                },
                "details": {
                    "type": "object",
                    "additionalProperties": true
                }
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "healthy"
                },
                "service": {
                    "type": "string",
                    "example": "deckwatch"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-03-01T08:13:24Z"
                },
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/models.ProbeStatus"
                    }
                }
            }
        },
        "models.EntryModel": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string",
                    "example": "Steam Deck 64 GB LCD reacondicionada"
                },
                "price": {
                    "type": "string",
                    "example": "279,00€"
                },
                "url": {
                    "type": "string"
                },
                "availability": {
                    "type": "string",
                    "example": "in_stock",
                    "enum": [
                        "in_stock",
                        "out_of_stock",
                        "unknown"
                    ]
                },
                "synthetic": {
                    "type": "boolean"
                }
            }
        },
        "models.MonitorStatus": {
            "type": "object",
            "properties": {
                "running": {
                    "type": "boolean",
                    "example": true
                },
                "in_progress": {
                    "type": "boolean",
                    "example": false
                },
                "interval": {
                    "type": "integer",
                    "example": 900000000000
                },
                "last_check": {
                    "type": "string",
                    "example": "2026-03-01T08:00:00Z"
                },
                "last_outcome": {
                    "type": "string",
                    "example": "none_in_stock"
                },
                "last_error": {
                    "type": "string"
                },
                "last_entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.EntryModel"
                    }
                },
                "next_run": {
                    "type": "string",
                    "example": "2026-03-01T08:15:00Z"
                },
                "checks": {
                    "type": "integer",
                    "example": 12
                },
                "failures": {
                    "type": "integer",
                    "example": 0
                },
                "recoveries": {
                    "type": "integer",
                    "example": 1
                },
                "alerts_sent": {
                    "type": "integer",
                    "example": 2
                },
                "alerts_throttled": {
                    "type": "integer",
                    "example": 1
                }
            }
        },
        "models.StatusResponse": {
            "type": "object",
            "properties": {
                "service": {
                    "type": "string",
                    "example": "deckwatch"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-03-01T08:13:24Z"
                },
                "uptime": {
                    "type": "string",
                    "example": "2h0m0s"
                },
                "monitor": {
                    "$ref": "#/definitions/models.MonitorStatus"
                },
                "manual_login_pending": {
                    "type": "boolean",
                    "example": false
                }
            }
        },
        "models.CheckReport": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "example": "5b0c2f5e-6a0e-4c56-9a3b-8d6f1f3c0a11"
                },
                "started_at": {
                    "type": "string",
                    "example": "2026-03-01T08:00:00Z"
                },
                "duration": {
                    "type": "integer",
                    "example": 5300000000
                },
                "outcome": {
                    "type": "string",
                    "example": "available",
                    "enum": [
                        "available",
                        "none_in_stock",
                        "no_items",
                        "not_logged_in",
                        "error"
                    ]
                },
                "entries": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.EntryModel"
                    }
                },
                "qualifying": {
                    "type": "integer",
                    "example": 1
                },
                "logged_in": {
                    "type": "boolean",
                    "example": true
                },
                "account": {
                    "type": "string",
                    "example": "deckfan"
                },
                "recovered": {
                    "type": "string",
                    "example": "profile"
                },
                "notified": {
                    "type": "boolean",
                    "example": true
                },
                "error": {
                    "type": "string"
                },
                "exit_code": {
                    "type": "integer",
                    "example": 0
                }
            }
        },
        "models.AcceptedResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "accepted"
                },
                "message": {
                    "type": "string",
                    "example": "session refresh started"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-03-01T08:13:24Z"
                }
            }
        },
        "models.DeliveredResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "example": "delivered"
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-03-01T08:13:24Z"
                }
            }
        },
        "models.CookieStatus": {
            "type": "object",
            "properties": {
                "path": {
                    "type": "string",
                    "example": "cookies.json"
                },
                "exists": {
                    "type": "boolean",
                    "example": true
                },
                "size": {
                    "type": "integer",
                    "example": 2048
                },
                "mod_time": {
                    "type": "string",
                    "example": "2026-03-01T07:00:00Z"
                },
                "count": {
                    "type": "integer",
                    "example": 9
                },
                "authenticated": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "models.CheckRunModel": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer",
                    "example": 42
                },
                "check_id": {
                    "type": "string",
                    "example": "5b0c2f5e-6a0e-4c56-9a3b-8d6f1f3c0a11"
                },
                "started_at": {
                    "type": "string",
                    "example": "2026-03-01T08:00:00Z"
                },
                "duration": {
                    "type": "integer",
                    "example": 5300
                },
                "outcome": {
                    "type": "string",
                    "example": "none_in_stock"
                },
                "entry_count": {
                    "type": "integer",
                    "example": 3
                },
                "qualifying": {
                    "type": "integer",
                    "example": 0
                },
                "exit_code": {
                    "type": "integer",
                    "example": 1
                },
                "error_msg": {
                    "type": "string"
                }
            }
        },
        "models.HistoryPage": {
            "type": "object",
            "properties": {
                "runs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.CheckRunModel"
                    }
                },
                "count": {
                    "type": "integer",
                    "example": 2
                },
                "limit": {
                    "type": "integer",
                    "example": 20
                }
            }
        },
        "models.HistoryResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": true
                },
                "timestamp": {
                    "type": "string",
                    "example": "2026-03-01T08:13:24Z"
                },
                "data": {
                    "$ref": "#/definitions/models.HistoryPage"
                }
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "boolean",
                    "example": true
                },
                "message": {
                    "type": "string",
                    "example": "A check is already in progress"
                },
                "code": {
                    "type": "integer",
                    "example": 409
                },
                "details": {
                    "type": "string",
                    "example": "check already in progress"
                },
                "request_id": {
                    "type": "string",
                    "example": "0b9d4a36-0c1e-4b5f-9e3c-6c7c1e8a9f10"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "deckwatch control API",
	Description:      "Trigger stock checks, inspect the watcher and manage the store session.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
