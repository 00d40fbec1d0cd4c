//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate is the generated-docs shape swag expects. Regenerate the full
// document with `swag init -g cmd/loradex/docs.go` when handlers change.
const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/status": {"get": {"tags": ["ops"], "summary": "Service status", "responses": {"200": {"description": "OK"}}}},
        "/config": {
            "get": {"tags": ["config"], "summary": "Read the service configuration", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["config"], "summary": "Change the base directory", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/base-models": {"get": {"tags": ["catalog"], "summary": "List the base model labels", "responses": {"200": {"description": "OK"}}}},
        "/folders": {"get": {"tags": ["catalog"], "summary": "List sub-folders", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/lora-files": {"get": {"tags": ["catalog"], "summary": "Scan one folder", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/scan-all-loras": {"get": {"tags": ["catalog"], "summary": "Scan the whole tree", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/lora-config": {
            "get": {"tags": ["catalog"], "summary": "Read a model sidecar", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "post": {"tags": ["catalog"], "summary": "Overwrite a model sidecar", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/clicks": {"post": {"tags": ["clicks"], "summary": "Record a model selection", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/preview": {"get": {"tags": ["previews"], "summary": "Serve a model preview image", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/previews": {"get": {"tags": ["previews"], "summary": "List the previews of a model", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/upload-preview": {"post": {"tags": ["previews"], "summary": "Upload a model preview", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}},
        "/swap-preview": {"post": {"tags": ["previews"], "summary": "Promote a preview to the primary image", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/combinations": {
            "get": {"tags": ["combinations"], "summary": "List combinations", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["combinations"], "summary": "Create a combination", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/combinations/{id}": {"delete": {"tags": ["combinations"], "summary": "Delete a combination", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/combinations/{id}/previews": {"post": {"tags": ["combinations"], "summary": "Add a combination preview", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
        "/combinations/{id}/previews/{file}": {
            "get": {"tags": ["combinations"], "summary": "Serve a combination preview image", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["combinations"], "summary": "Delete a combination preview", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "last remaining preview"}}}
        }
    }
}`

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "loradex API",
	Description:      "HTTP API for browsing and organizing a local LoRA model library.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the Swagger UI and doc.json under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
