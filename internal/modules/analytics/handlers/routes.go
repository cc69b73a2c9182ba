package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the analytics and booking import routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/overview", h.HandleGetOverview)
		r.Get("/performance", h.HandleGetPerformance)
		r.Get("/report.xlsx", h.HandleGetReportWorkbook)
		r.Get("/thresholds", h.HandleGetThresholds)
		r.Get("/filters", h.HandleGetFilters)
		r.Get("/properties/{property}/series", func(w http.ResponseWriter, r *http.Request) {
			property := chi.URLParam(r, "property")
			h.HandleGetPropertySeries(w, r, property)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/import", h.HandleImportBookings)
	})
}
