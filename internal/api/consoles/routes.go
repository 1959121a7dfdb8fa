package consoles

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers console routes. The dictation stream is long-lived
// and stays outside the request timeout.
func RegisterRoutes(r chi.Router, h *Handler, timeout time.Duration) {
	r.Route("/consoles", func(r chi.Router) {
		r.Get("/{id}/dictation/stream", h.DictationStream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(timeout))

			r.Post("/", h.CreateConsole)
			r.Get("/{id}", h.GetConsole)
			r.Delete("/{id}", h.DeleteConsole)

			r.Post("/{id}/session", h.CreateSession)
			r.Delete("/{id}/session", h.ResetSession)

			r.Post("/{id}/chat", h.SendChat)
			r.Post("/{id}/tailor", h.RunTailor)
			r.Post("/{id}/questions", h.RunQuestions)
			r.Post("/{id}/projects", h.RunProjects)
			r.Post("/{id}/schedule", h.RunSchedule)
			r.Get("/{id}/schedule.ics", h.DownloadSchedule)
			r.Post("/{id}/jobs", h.RunJobs)

			r.Put("/{id}/interview/active", h.SelectQuestion)
			r.Put("/{id}/interview/answers/{index}", h.RecordAnswer)
			r.Post("/{id}/interview/answers/{index}/evaluate", h.Evaluate)

			r.Get("/{id}/companies", h.GetCompanies)
			r.Get("/{id}/report", h.GetReport)
			r.Get("/{id}/history", h.GetHistory)

			r.Post("/{id}/dictation/{command}", h.DictationCommand)
		})
	})
}
