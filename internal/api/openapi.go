package api

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/agentgw/agentgw/internal/logx"
)

const openapiYAML = `
openapi: "3.0.3"
info:
  title: agentgw API
  version: "1.0.0"
paths:
  /api/v1/agent/stream:
    post:
      summary: Stream an agent execution as server-sent events
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [query]
              properties:
                requestId: {type: string}
                user: {type: string}
                query: {type: string}
                deepThink: {type: integer}
                outputStyle: {type: string}
                agentType: {type: integer}
      responses:
        "200":
          description: Event stream of process records
          content:
            text/event-stream: {}
        "400": {description: Invalid query or unregistered agent type}
        "503": {description: Server draining}
  /api/v1/agent/ws:
    get:
      summary: Stream an agent execution over WebSocket
      parameters:
        - {name: query, in: query, required: true, schema: {type: string}}
        - {name: requestId, in: query, schema: {type: string}}
        - {name: user, in: query, schema: {type: string}}
        - {name: deepThink, in: query, schema: {type: integer}}
        - {name: agentType, in: query, schema: {type: integer}}
        - {name: outputStyle, in: query, schema: {type: string}}
      responses:
        "101": {description: WebSocket upgrade}
        "400": {description: Invalid query or unregistered agent type}
  /api/v1/agent/result/{reqId}:
    get:
      summary: Look up the journaled terminal outcome of a request
      parameters:
        - {name: reqId, in: path, required: true, schema: {type: string}}
      responses:
        "200": {description: Terminal outcome}
        "404": {description: Unknown request id}
  /api/v1/state:
    get:
      summary: Get server lifecycle state
      responses:
        "200": {description: State snapshot}
  /api/v1/status:
    get:
      summary: Get process status
      responses:
        "200": {description: Status with resource usage}
  /healthz:
    get:
      summary: Health check
      responses:
        "200": {description: OK}
`

var openapiJSON = mustOpenAPISchema()

func mustOpenAPISchema() []byte {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openapiYAML))
	if err != nil {
		panic(err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		panic(err)
	}
	b, err := doc.MarshalJSON()
	if err != nil {
		panic(err)
	}
	return b
}

// ServeOpenAPI serves the embedded OpenAPI schema.
func ServeOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(openapiJSON); err != nil {
		logx.Log.Error().Err(err).Msg("write openapi")
	}
}

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>agentgw API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
  window.onload = () => {
    SwaggerUIBundle({
      url: 'openapi.json',
      dom_id: '#swagger-ui'
    });
  };
  </script>
</body>
</html>`

// ServeSwagger serves a minimal Swagger UI.
func ServeSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(swaggerPage)); err != nil {
		logx.Log.Error().Err(err).Msg("write swagger page")
	}
}
