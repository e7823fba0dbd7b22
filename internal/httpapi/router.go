package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"frontdesk/internal/api"
	"frontdesk/internal/audit"
	"frontdesk/internal/auth"
	"frontdesk/internal/cars"
	"frontdesk/internal/history"
	"frontdesk/internal/notify"
	"frontdesk/internal/services"
	"frontdesk/internal/state"
	"frontdesk/pkg/config"
	"frontdesk/pkg/garage"
)

type Dependencies struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Garage *garage.Client
	Log    *logrus.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	states := state.NewStore(services.NewEntryFactory(deps.Garage, deps.Log))
	auditRepo := audit.NewRepository(deps.DB)
	historyRepo := history.NewRepository(deps.DB)

	authHandlers := auth.Handlers{
		Cfg:    deps.Cfg,
		Garage: deps.Garage,
		Log:    deps.Log,
	}
	carHandlers := cars.Handlers{
		Garage: deps.Garage,
		States: states,
		Log:    deps.Log,
	}
	serviceHandlers := services.Handlers{
		DB:      deps.DB,
		Garage:  deps.Garage,
		States:  states,
		Audit:   auditRepo,
		History: historyRepo,
		Log:     deps.Log,
	}
	notifyHandler := notify.Handler{
		Cfg:     deps.Cfg,
		History: historyRepo,
		Log:     deps.Log,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			MaxAgeSeconds:  600,
		}))

		r.Post("/auth/login", authHandlers.Login)
		r.Post("/auth/register", authHandlers.Register)

		// Session-scoped APIs
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg.Session.Secret))

			// Cars and the add/edit car form
			r.Get("/cars", carHandlers.List)
			r.Post("/cars", carHandlers.Create)
			r.Put("/cars", carHandlers.Update)
			r.Delete("/cars/{id}", carHandlers.Delete)
			r.Get("/cars/options", carHandlers.Options)
			r.Get("/cars/makes", carHandlers.Makes)

			r.Route("/cars/form", func(r chi.Router) {
				r.Get("/", carHandlers.FormState)
				r.Post("/init-create", carHandlers.FormInitCreate)
				r.Post("/init-edit", carHandlers.FormInitEdit)
				r.Post("/year", carHandlers.FormSetYear)
				r.Post("/make", carHandlers.FormSetMake)
				r.Post("/type", carHandlers.FormSetType)
				r.Post("/refresh", carHandlers.FormRefresh)
				r.Post("/model", carHandlers.FormSelectModel)
			})

			// Booked services
			r.Get("/services", serviceHandlers.List)
			r.Get("/services/selection", serviceHandlers.Selection)
			r.Post("/services/select", serviceHandlers.Select)
			r.Post("/services/deselect", serviceHandlers.Deselect)
			r.Post("/services/date", serviceHandlers.PickDate)
			r.Post("/services/time", serviceHandlers.PickTime)
			r.Post("/services/cancel", serviceHandlers.Cancel)
			r.Post("/services/reschedule", serviceHandlers.Reschedule)
			r.Get("/services/available/{garageID}", serviceHandlers.Available)
			r.Post("/services/add", serviceHandlers.Add)
			r.Get("/services/{id}/history", serviceHandlers.RepairHistory)
			r.Get("/services/audit", serviceHandlers.AuditTrail)
		})

		// Signed notifications pushed by the garage backend
		r.Post("/notifications/bookings", notifyHandler.ServeHTTP)
	})

	return r
}
