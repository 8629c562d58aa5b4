// Package docs provides the OpenAPI document served at /swagger/doc.json.
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
        "/v1/elections": {
            "post": {
                "tags": ["elections"],
                "summary": "Create a draft election",
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["elections"],
                "summary": "List elections for an organization",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/elections/{election_id}/activate": {
            "post": {
                "tags": ["elections"],
                "summary": "Activate an election inside its window",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/v1/registry/entries": {
            "post": {
                "tags": ["registry"],
                "summary": "Enroll a voter",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate identifier"}}
            }
        },
        "/v1/identity/verify": {
            "post": {
                "tags": ["identity"],
                "summary": "Start voter identity verification",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/identity/confirm": {
            "post": {
                "tags": ["identity"],
                "summary": "Confirm a one-time code",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Code mismatch"}}
            }
        },
        "/v1/votes": {
            "post": {
                "tags": ["votes"],
                "summary": "Cast a vote",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Already voted"}}
            }
        },
        "/v1/reports/elections/{election_id}": {
            "get": {
                "tags": ["reports"],
                "summary": "Election turnout summary",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BallotCore API",
	Description:      "Election-integrity engine: elections, voter registry, identity challenges, vote ledger and turnout reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
