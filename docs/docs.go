// Package docs serves the OpenAPI description of the storefront API. It is
// maintained by hand alongside the handler annotations; docs_test.go checks
// that every schema reference resolves.
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
        "/api/admin/orders": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "All orders, newest first",
                "parameters": [
                    {"type": "string", "description": "order status", "name": "status", "in": "query"},
                    {"type": "string", "description": "customer email", "name": "email", "in": "query"},
                    {"type": "integer", "description": "page, from 1", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderPageResponse"}}
                }
            }
        },
        "/api/admin/orders/{id}/status": {
            "patch": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Move an order to a new status",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true},
                    {"description": "new status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Product categories in display order",
                "responses": {}
            }
        },
        "/api/orders": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "The signed-in customer's orders, newest first",
                "parameters": [
                    {"type": "string", "description": "order status", "name": "status", "in": "query"},
                    {"type": "integer", "description": "page, from 1", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.OrderPageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"description": "customer and cart", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.PlaceOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.PlaceOrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/orders/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get one of the signed-in customer's orders",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/product-stock": {
            "get": {
                "description": "Fails open: unknown products, invalid queries and lookup failures report 0.",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Advisory stock count for a product",
                "parameters": [
                    {"type": "string", "description": "product name", "name": "name", "in": "query"},
                    {"type": "string", "description": "product id", "name": "id", "in": "query"},
                    {"type": "string", "description": "category to search", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StockResponse"}}
                }
            }
        },
        "/api/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Browse products, newest first",
                "parameters": [
                    {"type": "string", "description": "category", "name": "category", "in": "query"},
                    {"type": "string", "description": "name search", "name": "q", "in": "query"},
                    {"type": "integer", "description": "page, from 1", "name": "page", "in": "query"},
                    {"type": "integer", "description": "page size", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ProductPageResponse"}}
                }
            }
        },
        "/api/products/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Newest products of every category",
                "parameters": [
                    {"type": "integer", "default": 2, "description": "products per category", "name": "perCategory", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.CategoryProductsResponse"}}}
                }
            }
        },
        "/api/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "string", "description": "product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Customer": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "domain.Order": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "customer": {"$ref": "#/definitions/domain.Customer"},
                "id": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.OrderItem"}},
                "status": {"type": "string", "enum": ["Pending", "Processing", "Shipped", "Delivered", "Cancelled"]},
                "total": {"type": "number"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.OrderItem": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "quantity": {"type": "integer"},
                "unitPriceAtOrder": {"type": "number"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "enum": ["shirts_and_polos", "trousers", "caps", "jewelries", "shoes"]},
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "imageUrl": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"},
                "updatedAt": {"type": "string"}
            }
        },
        "http.CategoryProductsResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "available": {"type": "integer"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"},
                "product": {"type": "string"},
                "requested": {"type": "integer"},
                "success": {"type": "boolean"}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "http.OrderLineRequest": {
            "type": "object",
            "required": ["qty"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "qty": {"type": "integer", "minimum": 1}
            }
        },
        "http.OrderPageResponse": {
            "type": "object",
            "properties": {
                "orders": {"type": "array", "items": {"$ref": "#/definitions/domain.Order"}},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "http.PlaceOrderRequest": {
            "type": "object",
            "required": ["address", "email", "name", "phone", "products"],
            "properties": {
                "address": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "products": {"type": "array", "maxItems": 50, "minItems": 1, "items": {"$ref": "#/definitions/http.OrderLineRequest"}},
                "total": {"type": "number"}
            }
        },
        "http.PlaceOrderResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "order": {"$ref": "#/definitions/domain.Order"},
                "success": {"type": "boolean"}
            }
        },
        "http.ProductPageResponse": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "http.StockResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "http.UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo is registered with swag and served by gin-swagger.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront Service API",
	Description:      "Catalog browsing, stock lookup and order placement for the storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
