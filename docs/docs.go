// Package docs registers the OpenAPI document served under /swagger.
// Regenerate the paths with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "TransportConnect marketplace: driver routes, shipment demandes and their delivery workflow.",
        "title": "TransportConnect API",
        "version": "1.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user"}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login"}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}]}},
        "/annonces": {
            "get": {"tags": ["annonces"], "summary": "Search annonces", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["annonces"], "summary": "Publish an annonce", "security": [{"BearerAuth": []}]}
        },
        "/annonces/{id}": {
            "get": {"tags": ["annonces"], "summary": "Get an annonce", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["annonces"], "summary": "Delete an annonce and its demandes", "security": [{"BearerAuth": []}]}
        },
        "/annonces/{id}/statut": {"put": {"tags": ["annonces"], "summary": "Activate or deactivate an annonce", "security": [{"BearerAuth": []}]}},
        "/demandes": {
            "get": {"tags": ["demandes"], "summary": "List the caller's demandes", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["demandes"], "summary": "Submit a demande on an annonce", "security": [{"BearerAuth": []}]}
        },
        "/demandes/{id}": {"get": {"tags": ["demandes"], "summary": "Get a demande", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/reponse": {"put": {"tags": ["demandes"], "summary": "Accept or refuse a pending demande", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/statut": {"put": {"tags": ["demandes"], "summary": "Advance a demande through the delivery workflow", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/annuler": {"put": {"tags": ["demandes"], "summary": "Cancel a demande", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/messages": {"post": {"tags": ["demandes"], "summary": "Post a message on a demande", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/evaluation": {"post": {"tags": ["demandes"], "summary": "Rate the driver of a delivered demande", "security": [{"BearerAuth": []}]}},
        "/demandes/{id}/position": {"post": {"tags": ["demandes"], "summary": "Report the driver's current position", "security": [{"BearerAuth": []}]}},
        "/demandes/suivi/{numeroSuivi}": {"get": {"tags": ["demandes"], "summary": "Public tracking by tracking number"}},
        "/notifications": {"get": {"tags": ["notifications"], "summary": "List the caller's notifications", "security": [{"BearerAuth": []}]}},
        "/notifications/{id}/lue": {"put": {"tags": ["notifications"], "summary": "Mark a notification as read", "security": [{"BearerAuth": []}]}},
        "/stats/me": {"get": {"tags": ["stats"], "summary": "Dashboard counters for the caller", "security": [{"BearerAuth": []}]}},
        "/admin/stats": {"get": {"tags": ["stats"], "summary": "Platform-wide counters", "security": [{"BearerAuth": []}]}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &s{})
}
