package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Study Planner API",
        "description": "Study-plan generation and persistence service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Plans", "description": "Study-plan generation, persistence and export"}
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
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Dependencies unavailable"}
                }
            }
        },
        "/plans/generate": {
            "post": {
                "tags": ["Plans"],
                "summary": "Generate a study-plan proposal",
                "description": "Builds a preview proposal without persisting. Allocation problems surface as warnings, never as errors.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GeneratePlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/save": {
            "post": {
                "tags": ["Plans"],
                "summary": "Persist a generated proposal as a versioned study plan",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SavePlanRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal not found or expired"},
                    "412": {"description": "Proposal has unresolved overlaps"}
                }
            }
        },
        "/plans": {
            "get": {
                "tags": ["Plans"],
                "summary": "List study-plan versions for a student",
                "parameters": [
                    {"name": "studentId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/items": {
            "get": {
                "tags": ["Plans"],
                "summary": "Get scheduled rows of a stored plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Plan not found"}
                }
            }
        },
        "/plans/{id}/export": {
            "get": {
                "tags": ["Plans"],
                "summary": "Export a stored plan as markdown, CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["markdown", "csv", "pdf"], "default": "markdown"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "404": {"description": "Plan not found"}
                }
            }
        },
        "/plans/{id}": {
            "delete": {
                "tags": ["Plans"],
                "summary": "Delete a draft study plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Plan is not a draft"}
                }
            }
        }
    },
    "definitions": {
        "TimeWindow": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "18:00"}
            },
            "required": ["start", "end"]
        },
        "Exclusion": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-03-05"},
                "type": {"type": "string", "enum": ["holiday", "personal", "designated_holiday", "other"]},
                "reason": {"type": "string"}
            },
            "required": ["date", "type"]
        },
        "AcademySchedule": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer", "minimum": 0, "maximum": 6},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "subject": {"type": "string"},
                "travelTime": {"type": "integer"}
            },
            "required": ["start", "end"]
        },
        "SubjectSetting": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "type": {"type": "string", "enum": ["strategy", "weakness"]},
                "weeklyDays": {"type": "integer", "minimum": 0, "maximum": 7}
            },
            "required": ["subject", "type"]
        },
        "GeneratePlanRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "periodStart": {"type": "string", "example": "2026-03-02"},
                "periodEnd": {"type": "string", "example": "2026-03-08"},
                "studyHours": {"$ref": "#/definitions/TimeWindow"},
                "lunch": {"$ref": "#/definitions/TimeWindow"},
                "studyDays": {"type": "integer"},
                "reviewDays": {"type": "integer"},
                "distributionStrategy": {"type": "string", "enum": ["even"]},
                "cyclePolicy": {"type": "string", "enum": ["consume", "skip"]},
                "selfStudyOnExcluded": {"type": "boolean"},
                "contentIds": {"type": "array", "items": {"type": "string"}},
                "exclusions": {"type": "array", "items": {"$ref": "#/definitions/Exclusion"}},
                "academySchedules": {"type": "array", "items": {"$ref": "#/definitions/AcademySchedule"}},
                "subjectSettings": {"type": "array", "items": {"$ref": "#/definitions/SubjectSetting"}}
            },
            "required": ["studentId", "periodStart", "periodEnd", "studyHours", "studyDays", "contentIds"]
        },
        "SavePlanRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "publish": {"type": "boolean"}
            },
            "required": ["proposalId"]
        },
        "PlanItem": {
            "type": "object",
            "properties": {
                "planDate": {"type": "string"},
                "contentId": {"type": "string"},
                "rangeStart": {"type": "integer"},
                "rangeEnd": {"type": "integer"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "blockIndex": {"type": "integer"},
                "cycleDay": {"type": "integer"},
                "dateType": {"type": "string"},
                "sequence": {"type": "integer"}
            }
        },
        "Warning": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "severity": {"type": "string", "enum": ["info", "warning"]},
                "message": {"type": "string"}
            }
        },
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
