package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Placement Console API",
        "description": "Admin console backend for placement test logistics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Login and token lifecycle"},
        {"name": "Campaigns", "description": "Placement campaigns and cycles"},
        {"name": "Tests", "description": "Scheduled tests, venues and rosters"},
        {"name": "Roster", "description": "Applicant roster imports"},
        {"name": "Seating", "description": "Seat allocation and seating exports"},
        {"name": "Attendance", "description": "Test-day attendance marking"},
        {"name": "Users", "description": "Console account administration"},
        {"name": "Dashboard", "description": "Landing page statistics"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a console user",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/campaigns": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List campaigns",
                "responses": {"200": {"description": "Campaign page"}}
            },
            "post": {
                "tags": ["Campaigns"],
                "summary": "Create campaign",
                "responses": {"201": {"description": "Campaign created"}}
            }
        },
        "/campaigns/{id}/cycles": {
            "get": {
                "tags": ["Campaigns"],
                "summary": "List cycles for a campaign",
                "responses": {"200": {"description": "Cycles ordered by cycle number"}}
            }
        },
        "/cycles/{id}/tests": {
            "get": {
                "tags": ["Tests"],
                "summary": "List tests for a cycle",
                "responses": {"200": {"description": "Tests with applicant and venue counts"}}
            }
        },
        "/tests/upcoming": {
            "get": {
                "tags": ["Tests"],
                "summary": "List upcoming tests",
                "responses": {"200": {"description": "Tests dated today or later"}}
            }
        },
        "/tests/{id}/roster": {
            "post": {
                "tags": ["Roster"],
                "summary": "Import a roster file",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "200": {"description": "Import summary"},
                    "400": {"description": "Empty or unparsable roster"}
                }
            }
        },
        "/tests/{id}/allocate": {
            "post": {
                "tags": ["Seating"],
                "summary": "Run seat allocation",
                "responses": {
                    "200": {"description": "Allocation summary"},
                    "404": {"description": "No applicants for test"},
                    "409": {"description": "Allocation already running"}
                }
            }
        },
        "/tests/{id}/export": {
            "post": {
                "tags": ["Seating"],
                "summary": "Request a seating export",
                "responses": {"202": {"description": "Export queued"}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Seating"],
                "summary": "Check export status",
                "responses": {"200": {"description": "Export job state"}}
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Seating"],
                "summary": "Download a completed export",
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/tests/{id}/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark an applicant present",
                "responses": {
                    "201": {"description": "Attendance recorded"},
                    "404": {"description": "Unknown roll number"},
                    "409": {"description": "Already marked"}
                }
            },
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance for a test",
                "responses": {"200": {"description": "Attendance records with present count"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List console users",
                "responses": {"200": {"description": "User page"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a console account",
                "responses": {"201": {"description": "User created"}}
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Console entity counts",
                "responses": {"200": {"description": "Campaign, test and applicant totals"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
