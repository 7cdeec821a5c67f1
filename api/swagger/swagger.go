package swagger

import "github.com/swaggo/swag"

// The GraphQL proxy, chat relay and ops endpoints live outside basePath and are not listed.
const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Portal API",
        "description": "Page sessions, detail pages and relays in front of the campus API gateway",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Pages",
            "description": "Mounted list pages with search, forms and deletes"
        },
        {
            "name": "Details",
            "description": "Single entity pages"
        }
    ],
    "paths": {
        "/pages/{kind}": {
            "post": {
                "tags": [
                    "Pages"
                ],
                "summary": "Mount a list page",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Unknown kind"
                    }
                },
                "parameters": [
                    {
                        "name": "kind",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "students, courses or universities"
                    }
                ]
            }
        },
        "/pages/{id}": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Render a mounted page",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Search term"
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Pages"
                ],
                "summary": "Discard a page",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    }
                ]
            }
        },
        "/pages/{id}/reload": {
            "post": {
                "tags": [
                    "Pages"
                ],
                "summary": "Refetch a page from the gateway",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    }
                ]
            }
        },
        "/pages/{id}/form": {
            "post": {
                "tags": [
                    "Pages"
                ],
                "summary": "Open the create or edit form",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/FormRequest"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Pages"
                ],
                "summary": "Discard the open form",
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
                        "type": "string",
                        "description": "Page ID"
                    }
                ]
            }
        },
        "/pages/{id}/form/submit": {
            "post": {
                "tags": [
                    "Pages"
                ],
                "summary": "Save the open form",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed; meta.fields lists the fields"
                    },
                    "409": {
                        "description": "Form closed or submit in flight"
                    },
                    "502": {
                        "description": "Save failed"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/pages/{id}/entities/{entityId}": {
            "delete": {
                "tags": [
                    "Pages"
                ],
                "summary": "Delete an entity shown on the page",
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "502": {
                        "description": "Gateway rejected the delete; the entity is kept"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    },
                    {
                        "name": "entityId",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "description": "Entity ID"
                    }
                ]
            }
        },
        "/pages/{id}/export": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Export the filtered list",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Page ID"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Search term"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "csv or pdf"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": [
                    "Details"
                ],
                "summary": "Student detail with university and courses",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "description": "Student ID"
                    }
                ]
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": [
                    "Details"
                ],
                "summary": "Course detail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "description": "Course ID"
                    }
                ]
            }
        },
        "/universities/{id}": {
            "get": {
                "tags": [
                    "Details"
                ],
                "summary": "University detail",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer",
                        "description": "University ID"
                    }
                ]
            }
        },
        "/courses/enrollments": {
            "get": {
                "tags": [
                    "Details"
                ],
                "summary": "Courses with a simulated student roster",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Simulation disabled"
                    }
                }
            }
        }
    },
    "definitions": {
        "FormRequest": {
            "type": "object",
            "required": [
                "mode"
            ],
            "properties": {
                "mode": {
                    "type": "string",
                    "enum": [
                        "create",
                        "edit"
                    ]
                },
                "id": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
