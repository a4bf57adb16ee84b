package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Directory    *DirectoryHandler
	Availability *AvailabilityHandler
	Appointments *AppointmentHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Directory != nil {
		mux.HandleFunc("/professionals", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Directory.ListProfessionals(w, r)
			case http.MethodPost:
				cfg.Directory.CreateProfessional(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Directory.ListClients(w, r)
			case http.MethodPost:
				cfg.Directory.CreateClient(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/clients/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/clients/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			cfg.Directory.GetClient(w, r)
		})
		mux.HandleFunc("/partners", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Directory.ListPartners(w, r)
			case http.MethodPost:
				cfg.Directory.CreatePartner(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/partners/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/partners/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			cfg.Directory.GetPartner(w, r)
		})
	}

	mux.HandleFunc("/professionals/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/professionals/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithProfessionalID(r.Context(), id))

		switch sub {
		case "":
			if cfg.Directory == nil {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Directory.GetProfessional(w, r)
			case http.MethodDelete:
				cfg.Directory.DeactivateProfessional(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		case "templates":
			if cfg.Availability == nil {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Availability.ListTemplates(w, r)
			case http.MethodPost:
				cfg.Availability.CreateTemplate(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		case "exceptions":
			if cfg.Availability == nil {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Availability.ListExceptions(w, r)
			case http.MethodPost:
				cfg.Availability.CreateException(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		case "slots":
			if cfg.Availability == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Availability.ListSlots(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	if cfg.Availability != nil {
		mux.HandleFunc("/templates/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/templates/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Availability.UpdateTemplate(w, r)
			case http.MethodDelete:
				cfg.Availability.DeactivateTemplate(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
		mux.HandleFunc("/exceptions/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/exceptions/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			cfg.Availability.DeleteException(w, r)
		})
	}

	if cfg.Appointments != nil {
		mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Appointments.Create(w, r)
		})
		mux.HandleFunc("/appointments/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/appointments/")
			id, action, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithAppointmentID(r.Context(), id))

			switch action {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Appointments.Get(w, r)
			case "participants":
				switch r.Method {
				case http.MethodGet:
					cfg.Appointments.ListParticipants(w, r)
				case http.MethodPost:
					cfg.Appointments.Invite(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case "approve", "reject", "cancel", "complete", "act":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				switch action {
				case "approve":
					cfg.Appointments.Approve(w, r)
				case "reject":
					cfg.Appointments.Reject(w, r)
				case "cancel":
					cfg.Appointments.Cancel(w, r)
				case "complete":
					cfg.Appointments.Complete(w, r)
				case "act":
					cfg.Appointments.AttachAct(w, r)
				}
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/participants/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/participants/")
			id, action, _ := strings.Cut(rest, "/")
			if id == "" || action != "response" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			r = r.WithContext(ContextWithParticipantID(r.Context(), id))
			cfg.Appointments.Respond(w, r)
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
