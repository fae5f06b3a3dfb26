package api

import (
	"net/http"

	"github.com/phrazzld/newsletter-api/internal/api/shared"
)

// HealthCheck handles GET /health_check. It answers 200 with an empty body
// and does not touch the database.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	shared.RespondEmpty(w, http.StatusOK)
}
