package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "Task-tracking record service. Every response is annotated with the identity resolved from the bearer token.",
        "title": "tmtrack API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and the auth token"
        }
    },
    "paths": {
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "query",
                        "name": "userid",
                        "type": "string",
                        "description": "Restrict the listing to one owner"
                    }
                ],
                "responses": {
                    "200": {"description": "Task list with identity annotation"}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "date": {"type": "string", "example": "2023-10-27"},
                                "task_name": {"type": "string", "example": "Review documentation"},
                                "category": {"type": "string", "example": "Documentation"},
                                "expected_hours": {"type": "number", "example": 2.0},
                                "actual_hours": {"type": "number", "example": 1.5},
                                "description": {"type": "string"},
                                "project_code": {"type": "string"},
                                "notes": {"type": "string"}
                            },
                            "required": ["task_name", "category", "expected_hours"]
                        }
                    }
                ],
                "responses": {
                    "201": {"description": "Task created; body contains the generated task_id"},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/tasks/{task_id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Fetch a task by id",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "task_id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "The task document"},
                    "404": {"description": "Unknown task_id"}
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Apply a partial update to a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "task_id", "type": "string", "required": true},
                    {
                        "in": "body",
                        "name": "patch",
                        "required": true,
                        "schema": {"type": "object"}
                    }
                ],
                "responses": {
                    "200": {"description": "Task updated"},
                    "400": {"description": "Validation failed"},
                    "404": {"description": "Unknown task_id"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List known userids",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Userids from the token table"}
                }
            }
        },
        "/categories": {
            "get": {
                "tags": ["Categories"],
                "summary": "Get the category list",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "The shared category list"}
                }
            },
            "put": {
                "tags": ["Categories"],
                "summary": "Replace the entire category list",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "categories",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "categories": {
                                    "type": "array",
                                    "items": {"type": "string"},
                                    "example": ["work", "new category"]
                                }
                            },
                            "required": ["categories"]
                        }
                    }
                ],
                "responses": {
                    "200": {"description": "The replacement list"},
                    "400": {"description": "Invalid body"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "tmtrack API",
	Description:      "Task-tracking record service API documentation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
