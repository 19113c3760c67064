package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Election API",
        "description": "Nomination, endorsement and manifesto backend for student body elections",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, OTP verification and login"},
        {"name": "Nominations", "description": "Candidate nomination lifecycle"},
        {"name": "Supporters", "description": "Proposer, seconder and campaigner endorsements"},
        {"name": "Manifestos", "description": "Phased manifesto uploads and downloads"},
        {"name": "Review", "description": "Phase-scoped reviewer console"},
        {"name": "Admin", "description": "Election commission endpoints"},
        {"name": "Superadmin", "description": "Configuration, statistics and exports"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request a registration OTP",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Account already exists"}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Complete registration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyOTPRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired code"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/candidates": {
            "get": {
                "tags": ["Nominations"],
                "summary": "List accepted candidates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/nominations": {
            "post": {
                "tags": ["Nominations"],
                "summary": "File a nomination",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNominationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Nomination already filed"},
                    "422": {"description": "Nomination window closed"}
                }
            }
        },
        "/nominations/me": {
            "get": {
                "tags": ["Nominations"],
                "summary": "Caller's nomination",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Nominations"],
                "summary": "Amend a pending nomination",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateNominationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Nomination locked"}
                }
            }
        },
        "/nominations/{id}": {
            "get": {
                "tags": ["Nominations"],
                "summary": "Fetch a nomination",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/supporters": {
            "post": {
                "tags": ["Supporters"],
                "summary": "Offer support to a candidate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSupporterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Self-support not allowed"},
                    "409": {"description": "Duplicate request"}
                }
            }
        },
        "/supporters/{id}/decision": {
            "post": {
                "tags": ["Supporters"],
                "summary": "Accept or reject a support request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SupporterDecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Role capacity exceeded"}
                }
            }
        },
        "/supporters/incoming": {
            "get": {
                "tags": ["Supporters"],
                "summary": "Requests against the caller's nomination",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/supporters/me": {
            "get": {
                "tags": ["Supporters"],
                "summary": "Requests the caller has filed",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifestos/{phase}": {
            "post": {
                "tags": ["Manifestos"],
                "summary": "Upload a manifesto",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "phase", "in": "path", "required": true, "type": "string", "enum": ["phase1", "phase2", "final"]},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Phase window closed"}
                }
            },
            "delete": {
                "tags": ["Manifestos"],
                "summary": "Delete the caller's manifesto for a phase",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "phase", "in": "path", "required": true, "type": "string", "enum": ["phase1", "phase2", "final"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/manifestos/me": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "Caller's manifestos",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifestos/nomination/{id}": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "List a nomination's manifestos",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifestos/{id}/comments": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "Public comments on a manifesto",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/manifestos/{id}/signed-url": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "Issue a signed download link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/manifestos/{id}/view": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "View a manifesto inline",
                "produces": ["application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "502": {"description": "Upstream fetch failed"}
                }
            }
        },
        "/manifestos/download": {
            "get": {
                "tags": ["Manifestos"],
                "summary": "Download a manifesto file",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/review/login": {
            "post": {
                "tags": ["Review"],
                "summary": "Authenticate a reviewer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewerLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/review/manifestos": {
            "get": {
                "tags": ["Review"],
                "summary": "Manifestos for the reviewer's phase",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/review/manifestos/{id}/comments": {
            "get": {
                "tags": ["Review"],
                "summary": "Comments on a manifesto",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Outside reviewer phase"}
                }
            },
            "post": {
                "tags": ["Review"],
                "summary": "Comment on a manifesto",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Outside reviewer phase"}
                }
            }
        },
        "/admin/nominations": {
            "get": {
                "tags": ["Admin"],
                "summary": "List nominations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "ACCEPTED", "REJECTED"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/nominations/{id}/decision": {
            "post": {
                "tags": ["Admin"],
                "summary": "Accept or reject a nomination",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NominationDecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/supporters": {
            "get": {
                "tags": ["Admin"],
                "summary": "List all support requests",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/manifestos/{phase}": {
            "get": {
                "tags": ["Admin"],
                "summary": "List manifestos for a phase",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "phase", "in": "path", "required": true, "type": "string", "enum": ["phase1", "phase2", "final"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/manifestos/{id}/lock": {
            "post": {
                "tags": ["Admin"],
                "summary": "Lock or unlock a manifesto",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManifestoLockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/config": {
            "get": {
                "tags": ["Superadmin"],
                "summary": "Current election configuration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Superadmin"],
                "summary": "Update election configuration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/statistics": {
            "get": {
                "tags": ["Superadmin"],
                "summary": "Election statistics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/admins": {
            "post": {
                "tags": ["Superadmin"],
                "summary": "Promote a user to admin",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PromoteAdminRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Superadmin role is immutable"}
                }
            }
        },
        "/superadmin/users": {
            "get": {
                "tags": ["Superadmin"],
                "summary": "List all users",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/activity": {
            "get": {
                "tags": ["Superadmin"],
                "summary": "Recent activity log",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/superadmin/export/{type}": {
            "get": {
                "tags": ["Superadmin"],
                "summary": "Export election data",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["candidates", "supporters", "manifestos", "comments"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "400": {"description": "Unknown dataset"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "VerifyOTPRequest": {
            "type": "object",
            "required": ["email", "otp", "password", "name", "roll_no"],
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "roll_no": {"type": "string"},
                "department": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ReviewerLoginRequest": {
            "type": "object",
            "required": ["username", "password", "phase"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "phase": {"type": "string", "enum": ["phase1", "phase2", "final"]}
            }
        },
        "CreateNominationRequest": {
            "type": "object",
            "required": ["positions", "cpi"],
            "properties": {
                "positions": {"type": "array", "items": {"type": "string"}},
                "cpi": {"type": "number"}
            }
        },
        "UpdateNominationRequest": {
            "type": "object",
            "properties": {
                "positions": {"type": "array", "items": {"type": "string"}},
                "cpi": {"type": "number"}
            }
        },
        "NominationDecisionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ACCEPTED", "REJECTED"]}
            }
        },
        "CreateSupporterRequest": {
            "type": "object",
            "required": ["nomination_id", "role"],
            "properties": {
                "nomination_id": {"type": "string"},
                "role": {"type": "string", "enum": ["PROPOSER", "SECONDER", "CAMPAIGNER"]}
            }
        },
        "SupporterDecisionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ACCEPTED", "REJECTED"]}
            }
        },
        "CreateCommentRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string"}
            }
        },
        "ManifestoLockRequest": {
            "type": "object",
            "required": ["locked"],
            "properties": {
                "locked": {"type": "boolean"}
            }
        },
        "PromoteAdminRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "string"}
            }
        },
        "UpdateConfigRequest": {
            "type": "object",
            "properties": {
                "nomination_window": {"$ref": "#/definitions/WindowInput"},
                "campaigner_window": {"$ref": "#/definitions/WindowInput"},
                "manifesto_phase1_window": {"$ref": "#/definitions/WindowInput"},
                "manifesto_phase2_window": {"$ref": "#/definitions/WindowInput"},
                "manifesto_final_window": {"$ref": "#/definitions/WindowInput"},
                "max_proposers": {"type": "integer"},
                "max_seconders": {"type": "integer"},
                "max_campaigners": {"type": "integer"},
                "phase1_reviewer_credentials": {"$ref": "#/definitions/ReviewerCredentialsInput"},
                "phase2_reviewer_credentials": {"$ref": "#/definitions/ReviewerCredentialsInput"},
                "final_reviewer_credentials": {"$ref": "#/definitions/ReviewerCredentialsInput"}
            }
        },
        "WindowInput": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"}
            }
        },
        "ReviewerCredentialsInput": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
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
