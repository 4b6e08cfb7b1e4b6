// Package docs registers the OpenAPI document served at /swagger/doc.json
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
    "securityDefinitions": {
        "PlayerToken": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/games": {
            "get": {
                "tags": ["games"],
                "summary": "List live games",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["games"],
                "summary": "Create a game and seat the caller",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGameRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/PlayerJoinResponse"}}, "400": {"description": "Invalid settings or catalog too small"}}
            }
        },
        "/games/{id}": {
            "get": {
                "tags": ["games"],
                "summary": "Game summary",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/games/{id}/join": {
            "post": {
                "tags": ["games"],
                "summary": "Join a game as a human player",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/JoinRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/PlayerJoinResponse"}}, "409": {"description": "Rejected"}}
            }
        },
        "/games/{id}/state": {
            "get": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "The caller's projection of the game",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/games/{id}/start": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Start the first round",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Rejected"}}
            }
        },
        "/games/{id}/submissions": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Play answer cards for the current round",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Rejected"}}
            }
        },
        "/games/{id}/winner": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Czar picks the winning submission",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/WinnerRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Rejected"}}
            }
        },
        "/games/{id}/bots": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Seat an automated player",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Rejected"}}
            }
        },
        "/games/{id}/leave": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Leave the game",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/games/{id}/chat": {
            "post": {
                "tags": ["play"],
                "security": [{"PlayerToken": []}],
                "summary": "Send a chat message to the room",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/games/{id}/leaderboard": {
            "get": {
                "tags": ["games"],
                "summary": "Scores of seated players",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/games/{id}/rounds": {
            "get": {
                "tags": ["games"],
                "summary": "Archived rounds",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/feed": {
            "get": {
                "tags": ["feed"],
                "summary": "Winner videos, newest first",
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/feed/trending": {
            "get": {
                "tags": ["feed"],
                "summary": "Trending winner videos",
                "parameters": [{"in": "query", "name": "limit", "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/feed/{id}": {
            "get": {
                "tags": ["feed"],
                "summary": "A single feed entry",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/feed/{id}/like": {
            "post": {
                "tags": ["feed"],
                "summary": "Toggle a like",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/feed/{id}/comments": {
            "get": {
                "tags": ["feed"],
                "summary": "Comments, oldest first",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["feed"],
                "summary": "Add a comment",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/cards/{kind}": {
            "get": {
                "tags": ["cards"],
                "summary": "Browse the card catalog",
                "parameters": [
                    {"in": "path", "name": "kind", "type": "string", "enum": ["prompt", "answer"], "required": true},
                    {"in": "query", "name": "rating", "type": "string", "enum": ["none", "mild", "family"]},
                    {"in": "query", "name": "topic", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/cards/{kind}/{id}": {
            "get": {
                "tags": ["cards"],
                "summary": "A single card",
                "parameters": [
                    {"in": "path", "name": "kind", "type": "string", "required": true},
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/media/{id}": {
            "get": {
                "tags": ["media"],
                "summary": "Stream generated media",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/stats": {
            "get": {
                "tags": ["system"],
                "summary": "Live game and cache statistics",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "CreateGameRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "settings": {"$ref": "#/definitions/GameSettings"}
            }
        },
        "GameSettings": {
            "type": "object",
            "properties": {
                "maxPlayers": {"type": "integer"},
                "minPlayers": {"type": "integer"},
                "pointsToWin": {"type": "integer"},
                "handSize": {"type": "integer"},
                "rating": {"type": "string", "enum": ["none", "mild", "family"]},
                "topic": {"type": "string"}
            }
        },
        "JoinRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "SubmitRequest": {
            "type": "object",
            "properties": {"cardIds": {"type": "array", "items": {"type": "string"}}}
        },
        "WinnerRequest": {
            "type": "object",
            "properties": {"index": {"type": "integer"}}
        },
        "PlayerJoinResponse": {
            "type": "object",
            "properties": {
                "gameId": {"type": "string"},
                "playerId": {"type": "string"},
                "token": {"type": "string"},
                "state": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Absurdly Visual API",
	Description:      "Party card game server with generated round media and a public video feed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
