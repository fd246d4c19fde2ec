// Package docs holds the Swagger document served at /swagger when enabled.
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
                "tags": ["system"],
                "summary": "Liveness and readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/emergency": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Emergency number",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/analyze": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze free-text symptoms",
                "parameters": [
                    {"description": "Symptoms, profile, language and optional location", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.analyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.AnalysisResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/analyze-trends": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Summarize a symptom timeline",
                "parameters": [
                    {"description": "Timeline entries", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.analyzeTrendsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.TrendSummary"}}
                }
            }
        },
        "/api/ask": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Ask a free-form health question",
                "parameters": [
                    {"description": "Question", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.askRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.askResponse"}}
                }
            }
        },
        "/photo-analyze": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze a photo via labels and OCR",
                "parameters": [
                    {"description": "Base64 image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.imageAnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.AnalysisResult"}}
                }
            }
        },
        "/analyze-lab-report": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze lab report text or an image of one",
                "parameters": [
                    {"description": "Report text or base64 image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.labReportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/analysis.AnalysisResult"}}
                }
            }
        },
        "/vision": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Extract text from an image",
                "parameters": [
                    {"description": "Base64 image", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.visionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List the caller's history, newest first",
                "parameters": [
                    {"type": "integer", "description": "Maximum records (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/server.HistoryRecord"}}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Save an analysis result to the caller's history",
                "parameters": [
                    {"description": "History record", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.saveHistoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/server.HistoryRecord"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/api/history/export.xlsx": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["history"],
                "summary": "Download the caller's history as a spreadsheet",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/doctors": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["doctors"],
                "summary": "Nearby doctors ranked by rating and open-now",
                "parameters": [
                    {"type": "string", "description": "Specialty keyword", "name": "specialty", "in": "query"},
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/analysis.Doctor"}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["doctors"],
                "summary": "Nearby doctors ranked by rating and open-now",
                "parameters": [
                    {"description": "Specialty and coordinates", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.doctorsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/analysis.Doctor"}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/appointments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Book an appointment",
                "parameters": [
                    {"description": "Appointment", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.appointmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        },
        "/delete-account": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Delete the caller's account and every record tied to it",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/request-password-reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Send a password reset code",
                "parameters": [
                    {"description": "Email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.passwordResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/verify-password-reset": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Verify a reset code and set a new password",
                "parameters": [
                    {"description": "Email, code and new password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.verifyPasswordResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "analysis.Citation": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "analysis.Doctor": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "rating": {"type": "number"},
                "open_now": {"type": "boolean"},
                "phone": {"type": "string"},
                "maps_link": {"type": "string"}
            }
        },
        "analysis.AnalysisResult": {
            "type": "object",
            "properties": {
                "detected_condition": {"type": "string"},
                "medical_analysis": {"type": "string"},
                "why_happening_explanation": {"type": "string"},
                "immediate_action": {"type": "string"},
                "nurse_tips": {"type": "string"},
                "remedies": {"type": "array", "items": {"type": "string"}},
                "medicines": {"type": "array", "items": {"type": "string"}},
                "urgency": {"type": "string"},
                "suggested_doctor": {"type": "string"},
                "nursing_explanation": {"type": "string"},
                "personal_notes": {"type": "string"},
                "relevant_information": {"type": "string"},
                "hipaa_disclaimer": {"type": "string"},
                "citations": {"type": "array", "items": {"$ref": "#/definitions/analysis.Citation"}},
                "nearby_doctors": {"type": "array", "items": {"$ref": "#/definitions/analysis.Doctor"}}
            }
        },
        "analysis.TrendSummary": {
            "type": "object",
            "properties": {
                "summary": {"type": "string"},
                "citations": {"type": "array", "items": {"$ref": "#/definitions/analysis.Citation"}}
            }
        },
        "server.location": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "server.analyzeRequest": {
            "type": "object",
            "properties": {
                "symptoms": {"type": "string"},
                "profile": {"type": "object"},
                "language": {"type": "string"},
                "location": {"$ref": "#/definitions/server.location"}
            }
        },
        "server.timelineEntry": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "symptoms": {"type": "string"},
                "severity": {"type": "string"}
            }
        },
        "server.analyzeTrendsRequest": {
            "type": "object",
            "properties": {
                "timeline": {"type": "array", "items": {"$ref": "#/definitions/server.timelineEntry"}},
                "profile": {"type": "object"},
                "language": {"type": "string"}
            }
        },
        "server.askRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "profile": {"type": "object"},
                "language": {"type": "string"}
            }
        },
        "server.askResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "model": {"type": "string"}
            }
        },
        "server.imageAnalyzeRequest": {
            "type": "object",
            "properties": {
                "image_base64": {"type": "string"},
                "profile": {"type": "object"},
                "language": {"type": "string"},
                "location": {"$ref": "#/definitions/server.location"}
            }
        },
        "server.labReportRequest": {
            "type": "object",
            "properties": {
                "report_text": {"type": "string"},
                "image_base64": {"type": "string"},
                "profile": {"type": "object"},
                "language": {"type": "string"},
                "location": {"$ref": "#/definitions/server.location"}
            }
        },
        "server.visionRequest": {
            "type": "object",
            "properties": {
                "image_base64": {"type": "string"}
            }
        },
        "server.saveHistoryRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "query": {"type": "string"},
                "input_kind": {"type": "string"},
                "result": {"$ref": "#/definitions/analysis.AnalysisResult"}
            }
        },
        "server.HistoryRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "query": {"type": "string"},
                "input_kind": {"type": "string"},
                "detected_condition": {"type": "string"},
                "urgency": {"type": "string"},
                "result": {"$ref": "#/definitions/analysis.AnalysisResult"},
                "created_at": {"type": "string"}
            }
        },
        "server.doctorsRequest": {
            "type": "object",
            "properties": {
                "specialty": {"type": "string"},
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "server.appointmentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "doctor": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "server.passwordResetRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "redirect_to": {"type": "string"}
            }
        },
        "server.verifyPasswordResetRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "code": {"type": "string"},
                "new_password": {"type": "string"}
            }
        },
        "server.errorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "CareCompass API",
	Description:      "Symptom, photo and lab-report analysis relay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
