package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
)

// skill is one entry of the agent card's skills array (§6).
type skill struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type securityScheme struct {
	Type   string `json:"type"`
	Scheme string `json:"scheme"`
}

type agentCardDocument struct {
	SchemaVersion   string                    `json:"schemaVersion"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description,omitempty"`
	ServiceURL      string                    `json:"serviceUrl,omitempty"`
	Skills          []skill                   `json:"skills"`
	SecuritySchemes map[string]securityScheme `json:"securitySchemes"`
	PublicKey       string                    `json:"publicKey"`
	Metadata        map[string]any            `json:"metadata,omitempty"`
}

// AgentCardHandler serves GET /.well-known/agent.json: a read-only
// projection of the self-agent card, no authentication required (§6).
func AgentCardHandler(self registry.AgentCard) http.HandlerFunc {
	skills := make([]skill, 0, len(self.Skills))
	for _, s := range self.Skills {
		skills = append(skills, skill{Name: s})
	}

	doc := agentCardDocument{
		SchemaVersion: "1.0",
		Name:          self.Name,
		Description:   self.Description,
		ServiceURL:    self.ServiceURL,
		Skills:        skills,
		SecuritySchemes: map[string]securityScheme{
			"bearer": {Type: "bearer", Scheme: "bearer"},
		},
		PublicKey: self.PublicKey,
		Metadata:  self.Metadata,
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}
}
