// Package swagger serves the API contract and a Swagger UI page for it.
package swagger

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/ecom/api-contract"
)

// BasePath is where the docs router is mounted.
const BasePath = "/docs"

const uiVersion = "5.29.3"

// Router serves the UI at "/", the raw contract at "/openapi.yml" and the
// same contract rendered as JSON at "/openapi.json". It fails when the
// embedded contract does not load.
func Router() (chi.Router, error) {
	raw := apicontract.GetSpecBytes()

	doc, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load openapi contract: %w", err)
	}
	asJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal openapi contract: %w", err)
	}

	page := []byte(fmt.Sprintf(uiPage, doc.Info.Title, uiVersion, uiVersion, BasePath+"/openapi.yml"))

	r := chi.NewRouter()
	r.Get("/", serveBytes("text/html; charset=utf-8", page))
	r.Get("/openapi.yml", serveBytes("application/yaml", raw))
	r.Get("/openapi.json", serveBytes("application/json", asJSON))
	return r, nil
}

func serveBytes(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@%s/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@%s/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui', deepLinking: true });
  };
</script>
</body>
</html>
`
