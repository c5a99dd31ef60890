package api

import (
	_ "embed"
	"net/http"

	echo "github.com/labstack/echo/v5"
)

//go:embed api.yaml
var apiSpec string

const apiUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="description" content="Unpatched Server" />
  <title>Unpatched Server - SwaggerUI</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.3.1/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.3.1/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '/api/api.yaml',
      dom_id: '#swagger-ui',
    });
  };
</script>
</body>
</html>`

// apiUIHandler handles GET /api with a Swagger UI page over the served
// document.
func (s *Server) apiUIHandler(c *echo.Context) error {
	return c.HTML(http.StatusOK, apiUIPage)
}

// apiSpecHandler handles GET /api/api.yaml. The permissive CORS pair lets
// externally hosted API browsers load the document.
func (s *Server) apiSpecHandler(c *echo.Context) error {
	h := c.Response().Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET")
	return c.String(http.StatusOK, apiSpec)
}
