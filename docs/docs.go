// Package docs holds the swagger document served at /swagger/*.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Login",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.sessionResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.loginRequest"
                        }
                    }
                ]
            }
        },
        "/signup": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Sign up",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.sessionResponse"
                        }
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.signupRequest"
                        }
                    }
                ]
            }
        },
        "/logout": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Logout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/session": {
            "get": {
                "tags": [
                    "auth"
                ],
                "summary": "Current session",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.sessionResponse"
                        }
                    },
                    "401": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                }
            }
        },
        "/board/tasks": {
            "get": {
                "tags": [
                    "board"
                ],
                "summary": "List board tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "due",
                        "in": "query",
                        "type": "string"
                    }
                ]
            },
            "post": {
                "tags": [
                    "board"
                ],
                "summary": "Create a board task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.createTaskRequest"
                        }
                    }
                ]
            }
        },
        "/board/tasks/{id}": {
            "patch": {
                "tags": [
                    "board"
                ],
                "summary": "Edit a board task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.updateTaskRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "board"
                ],
                "summary": "Delete a board task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/board/tasks/{id}/toggle": {
            "post": {
                "tags": [
                    "board"
                ],
                "summary": "Toggle completion",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/board/tasks/{id}/sync": {
            "post": {
                "tags": [
                    "board"
                ],
                "summary": "Sync a board task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Admin dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/team": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Selected team",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "put": {
                "tags": [
                    "admin"
                ],
                "summary": "Select the team the admin views work on",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.teamRequest"
                        }
                    }
                ]
            }
        },
        "/admin/tasks": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List the selected team's tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Create and assign a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.adminTaskRequest"
                        }
                    }
                ]
            }
        },
        "/admin/tasks/{id}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Get a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            },
            "put": {
                "tags": [
                    "admin"
                ],
                "summary": "Update a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.adminTaskRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Delete a task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/admin/users": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List users",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "team",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/admin/users/{id}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Get a user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            },
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Delete a user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/admin/users/{id}/role": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Change a user's role",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.changeRoleRequest"
                        }
                    }
                ]
            }
        },
        "/admin/attendance": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Attendance records of the selected team",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/attendance/active": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Checked-in users",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/attendance/users/{id}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "A user's attendance",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/admin/leads": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List leads",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/admin/leads/upload": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Bulk import leads from CSV",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "file",
                        "in": "formData",
                        "required": true,
                        "type": "file"
                    }
                ]
            }
        },
        "/staff/dashboard": {
            "get": {
                "tags": [
                    "staff"
                ],
                "summary": "Staff dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/staff/tasks": {
            "get": {
                "tags": [
                    "staff"
                ],
                "summary": "Assigned tasks",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/staff/tasks/{id}": {
            "get": {
                "tags": [
                    "staff"
                ],
                "summary": "An assigned task",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/staff/tasks/{id}/status": {
            "patch": {
                "tags": [
                    "staff"
                ],
                "summary": "Update an assigned task's status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.taskStatusRequest"
                        }
                    }
                ]
            }
        },
        "/staff/tasks/{id}/details": {
            "patch": {
                "tags": [
                    "staff"
                ],
                "summary": "Update an assigned task's details",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.taskDetailsRequest"
                        }
                    }
                ]
            }
        },
        "/sales/dashboard": {
            "get": {
                "tags": [
                    "sales"
                ],
                "summary": "Sales dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/leads": {
            "get": {
                "tags": [
                    "sales"
                ],
                "summary": "List leads",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/sales/leads/not-interested": {
            "get": {
                "tags": [
                    "sales"
                ],
                "summary": "Leads marked not interested",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/leads/{id}/status": {
            "post": {
                "tags": [
                    "sales"
                ],
                "summary": "Change a lead's status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.leadStatusRequest"
                        }
                    }
                ]
            }
        },
        "/sales/leads/{id}/proof": {
            "post": {
                "tags": [
                    "sales"
                ],
                "summary": "Attach indicator proof to a lead",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                },
                "consumes": [
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "file",
                        "in": "formData",
                        "required": true,
                        "type": "file"
                    },
                    {
                        "name": "notes",
                        "in": "formData",
                        "type": "string"
                    }
                ]
            }
        },
        "/sales/leads/{id}/followups": {
            "post": {
                "tags": [
                    "sales"
                ],
                "summary": "Schedule a follow-up",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.followUpRequest"
                        }
                    }
                ]
            }
        },
        "/sales/followups": {
            "get": {
                "tags": [
                    "sales"
                ],
                "summary": "List follow-ups",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/account-openings": {
            "post": {
                "tags": [
                    "sales"
                ],
                "summary": "Record an account opening",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "422": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/api.errorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.accountOpeningRequest"
                        }
                    }
                ]
            }
        },
        "/staff/attendance/check-in": {
            "post": {
                "tags": [
                    "attendance"
                ],
                "summary": "Check in for today",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/staff/attendance/check-out": {
            "post": {
                "tags": [
                    "attendance"
                ],
                "summary": "Check out",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/staff/attendance/today": {
            "get": {
                "tags": [
                    "attendance"
                ],
                "summary": "Today's attendance",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/staff/attendance/records": {
            "get": {
                "tags": [
                    "attendance"
                ],
                "summary": "Own attendance records",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/attendance/check-in": {
            "post": {
                "tags": [
                    "attendance"
                ],
                "summary": "Check in for today",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/attendance/check-out": {
            "post": {
                "tags": [
                    "attendance"
                ],
                "summary": "Check out",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/attendance/today": {
            "get": {
                "tags": [
                    "attendance"
                ],
                "summary": "Today's attendance",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sales/attendance/records": {
            "get": {
                "tags": [
                    "attendance"
                ],
                "summary": "Own attendance records",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "handler.signupRequest": {
            "type": "object",
            "properties": {
                "username": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "password2": {
                    "type": "string"
                },
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "user_type": {
                    "type": "string"
                }
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "role": {
                    "type": "string"
                },
                "display_name": {
                    "type": "string"
                },
                "redirect": {
                    "type": "string"
                },
                "user": {
                    "type": "object"
                }
            }
        },
        "handler.createTaskRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "deadline": {
                    "type": "string"
                },
                "assigned_to": {
                    "type": "integer"
                }
            },
            "required": [
                "title"
            ]
        },
        "handler.updateTaskRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "deadline": {
                    "type": "string"
                },
                "clear_deadline": {
                    "type": "boolean"
                }
            }
        },
        "handler.teamRequest": {
            "type": "object",
            "properties": {
                "team": {
                    "type": "string"
                }
            },
            "required": [
                "team"
            ]
        },
        "handler.adminTaskRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "assigned_to": {
                    "type": "integer"
                },
                "deadline": {
                    "type": "string"
                }
            },
            "required": [
                "title"
            ]
        },
        "handler.changeRoleRequest": {
            "type": "object",
            "properties": {
                "target": {
                    "type": "string"
                }
            },
            "required": [
                "target"
            ]
        },
        "handler.taskStatusRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "completion_notes": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ]
        },
        "handler.taskDetailsRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "deadline": {
                    "type": "string"
                }
            }
        },
        "handler.leadStatusRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ]
        },
        "handler.followUpRequest": {
            "type": "object",
            "properties": {
                "scheduled_date": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            },
            "required": [
                "scheduled_date"
            ]
        },
        "handler.accountOpeningRequest": {
            "type": "object",
            "properties": {
                "lead": {
                    "type": "integer"
                },
                "deposit_amount": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            },
            "required": [
                "lead",
                "deposit_amount"
            ]
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "taskdesk API",
	Description:      "Web front-end service for the task-management backend: sessions, a local-first task board and the admin, staff and sales sections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
