package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Fee Installment API",
        "description": "Student registration, installment submission, admin review and receipts",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Student registration and lookup"},
        {"name": "Installments", "description": "Payment submission"},
        {"name": "Uploads", "description": "Payment-proof images"},
        {"name": "Receipts", "description": "Receipts for paid installments"},
        {"name": "Authentication", "description": "Administrator sessions"},
        {"name": "Admin", "description": "Installment review"}
    ],
    "paths": {
        "/students": {
            "post": {
                "tags": ["Students"],
                "summary": "Register student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/lookup": {
            "get": {
                "tags": ["Students"],
                "summary": "Find student by name and date of birth",
                "parameters": [
                    {"name": "studentName", "in": "query", "type": "string", "required": true},
                    {"name": "dateOfBirth", "in": "query", "type": "string", "format": "date", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student with installments and paid-slot grid",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/installments/{installmentId}/receipt": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Receipt for a paid installment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "installmentId", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or not paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/installments/{installmentId}/receipt.pdf": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Printable receipt",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true},
                    {"name": "installmentId", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "404": {"description": "Not found or not paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/receipts/shared/{token}": {
            "get": {
                "tags": ["Receipts"],
                "summary": "Receipt behind a signed link",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document"},
                    "401": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No longer paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/installments": {
            "post": {
                "tags": ["Installments"],
                "summary": "Submit installment payment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstallmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot already submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/uploads/payment-proof": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload payment proof image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported image", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/uploads/payment-proofs/{name}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Serve payment proof image",
                "produces": ["image/jpeg"],
                "parameters": [
                    {"name": "name", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Image"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "204": {"description": "Logged out"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current administrator",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/installments": {
            "get": {
                "tags": ["Admin"],
                "summary": "List all installments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Admin"],
                "summary": "Change installment status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInstallmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid status or transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/installments/dashboard": {
            "get": {
                "tags": ["Admin"],
                "summary": "Filtered, paginated installment table",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "paid", "rejected"]},
                    {"name": "page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/installments/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export installments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/installments/{id}/receipt-link": {
            "post": {
                "tags": ["Admin"],
                "summary": "Issue a signed receipt link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not paid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "studentName": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date"},
                "fatherName": {"type": "string"},
                "motherName": {"type": "string"},
                "guardianName": {"type": "string"},
                "contactNumber": {"type": "string", "maxLength": 20},
                "academicYear": {"type": "string", "example": "2024-2025"},
                "yearLevel": {"type": "string", "enum": ["year-1", "year-2", "year-3", "year-4", "year-5", "year-6", "year-7", "year-8", "year-9", "igcse"]},
                "schoolLocation": {"type": "string", "enum": ["yangon-downtown", "yangon-north", "yangon-south", "yangon-east", "yangon-west", "mandalay", "naypyidaw"]},
                "campus": {"type": "string", "enum": ["main-campus", "north-campus", "south-campus", "east-campus"]}
            },
            "required": ["studentName", "dateOfBirth", "contactNumber", "academicYear", "yearLevel", "schoolLocation", "campus"]
        },
        "CreateInstallmentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "amount": {"type": "integer"},
                "isOneTimePayment": {"type": "boolean"},
                "installmentNumber": {"type": "integer", "minimum": 1, "maximum": 7},
                "paymentReceiptUrl": {"type": "string"},
                "paymentMethod": {"type": "string", "enum": ["cash", "bank"]},
                "bankName": {"type": "string", "enum": ["AYA", "KBZ", "CB", "UAB", "AGD", "MAB"]}
            },
            "required": ["studentId", "amount", "paymentReceiptUrl", "paymentMethod"]
        },
        "UpdateInstallmentStatusRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "status": {"type": "string", "enum": ["pending", "paid", "rejected"]},
                "note": {"type": "string"},
                "paymentDate": {"type": "string"}
            },
            "required": ["id", "status"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refreshToken": {"type": "string"}
            },
            "required": ["refreshToken"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
