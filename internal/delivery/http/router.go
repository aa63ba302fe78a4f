package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"prepdesk/internal/delivery/http/controllers"
	"prepdesk/internal/delivery/http/helpers"
	"prepdesk/internal/delivery/http/middleware"
	"prepdesk/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Reads are public; mutating routes require a Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	sessionController *controllers.SessionController,
	questionController *controllers.QuestionController,
	tagController *controllers.TagController,
	topicController *controllers.TopicController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sessions
	mux.HandleFunc("GET /sessions", sessionController.List)
	mux.HandleFunc("POST /sessions", auth(sessionController.Create))
	mux.HandleFunc("GET /sessions/{sessionID}", sessionController.Get)
	mux.HandleFunc("PUT /sessions/{sessionID}", auth(sessionController.Update))
	mux.HandleFunc("DELETE /sessions/{sessionID}", auth(sessionController.Delete))
	mux.HandleFunc("POST /sessions/{sessionID}/restore", auth(sessionController.Restore))
	mux.HandleFunc("POST /sessions/{sessionID}/questions/{questionID}", auth(sessionController.AttachQuestion))
	mux.HandleFunc("DELETE /sessions/{sessionID}/questions/{questionID}", auth(sessionController.DetachQuestion))
	mux.HandleFunc("GET /sessions/{sessionID}/available-questions", sessionController.ListAvailableQuestions)
	mux.HandleFunc("PUT /sessions/{sessionID}/thumbnail", auth(sessionController.ReplaceThumbnail))

	// Questions
	mux.HandleFunc("POST /questions", auth(questionController.Create))
	mux.HandleFunc("GET /questions/{questionID}", questionController.Get)
	mux.HandleFunc("PUT /questions/{questionID}", auth(questionController.Update))
	mux.HandleFunc("POST /questions/import-csv/{tagID}/{sessionID}", auth(questionController.ImportCSV))

	// Tags
	mux.HandleFunc("POST /tags", auth(tagController.Create))
	mux.HandleFunc("GET /tags", tagController.List)
	mux.HandleFunc("PUT /tags/{tagID}", auth(tagController.Update))
	mux.HandleFunc("DELETE /tags/{tagID}", auth(tagController.Delete))
	mux.HandleFunc("POST /tags/{tagID}/restore", auth(tagController.Restore))
	mux.HandleFunc("PUT /tags/{tagID}/questions", auth(tagController.AssignQuestions))

	// Topics
	mux.HandleFunc("POST /topics", auth(topicController.Create))
	mux.HandleFunc("GET /topics", topicController.List)
	mux.HandleFunc("PUT /topics/{topicID}", auth(topicController.Update))
	mux.HandleFunc("DELETE /topics/{topicID}", auth(topicController.Delete))
	mux.HandleFunc("POST /topics/{topicID}/restore", auth(topicController.Restore))
	mux.HandleFunc("PUT /topics/{topicID}/tags", auth(topicController.SetTags))
	mux.HandleFunc("GET /topics/{topicID}/tags", topicController.ListTags)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
