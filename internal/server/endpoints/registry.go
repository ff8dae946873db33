package endpoints

import (
	"github.com/jackzampolin/primer/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadDocumentEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DeleteDocumentEndpoint{},

		// Reader and section endpoints
		&CreateReaderEndpoint{},
		&ListSectionsEndpoint{},
		&GetSectionEndpoint{},

		// LLM call history
		&ListLLMCallsEndpoint{},
	}
}
