// Package swagger serves the embedded API contract and a Swagger UI page
// for it.
package swagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/stockbook/api-contract"
)

const (
	docsPath     = "/docs"
	specYAMLPath = "/docs/openapi.yml"
	specJSONPath = "/docs/openapi.json"
)

// Register mounts the docs routes on r. It fails when the embedded contract
// does not load or validate, so a broken contract is caught at startup.
func Register(r chi.Router) error {
	specYAML := apicontract.GetSpecBytes()

	doc, err := openapi3.NewLoader().LoadFromData(specYAML)
	if err != nil {
		return fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}

	specJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	var page bytes.Buffer
	if err := uiTemplate.Execute(&page, uiData{Title: doc.Info.Title, SpecURL: specYAMLPath}); err != nil {
		return fmt.Errorf("render swagger ui: %w", err)
	}

	r.Get(docsPath, serveBytes("text/html; charset=utf-8", page.Bytes()))
	r.Get(specYAMLPath, serveBytes("application/yaml", specYAML))
	r.Get(specJSONPath, serveBytes("application/json", specJSON))

	return nil
}

func serveBytes(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}

type uiData struct {
	Title   string
	SpecURL string
}

var uiTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '{{.SpecURL}}',
      dom_id: '#swagger-ui',
      deepLinking: true,
      persistAuthorization: true,
    });
  };
</script>
</body>
</html>
`))
