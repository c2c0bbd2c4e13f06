package contacts

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/kontaktapp/kontakt/internal/platform/request"
	"github.com/kontaktapp/kontakt/internal/platform/respond"
	"github.com/kontaktapp/kontakt/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the contact endpoints. The caller wraps the router
// with RequireAuth and the per-user rate limiter; every handler here can
// assume an authenticated identity.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/birthdays", handler.upcomingBirthdays)
	router.Get("/search/{field}/{value}", handler.search)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)
}

// contactRequest is the JSON payload for create and update. BirthDate uses
// the YYYY-MM-DD wire format.
type contactRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	BirthDate string  `json:"birth_date"`
	Extra     *string `json:"extra,omitempty"`
}

const birthDateLayout = "2006-01-02"

// toInput parses the wire payload into a service input. An unparseable
// birth date comes back as a field-level validation error.
func (payload contactRequest) toInput() (ContactInput, error) {
	input := ContactInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Extra:     payload.Extra,
	}

	if payload.BirthDate != "" {
		birthDate, err := time.Parse(birthDateLayout, payload.BirthDate)
		if err != nil {
			return input, validate.RequiredError(FieldBirthDate, "Must be a date in YYYY-MM-DD format")
		}
		input.BirthDate = birthDate
	}

	return input, nil
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.service.List(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contacts)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Get(request.Context(), ownerID, requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.service.FindByField(
		request.Context(),
		ownerID,
		requestutil.Param(request, "field"),
		requestutil.Param(request, "value"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contacts)
}

func (handler *Handler) upcomingBirthdays(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.service.UpcomingBirthdays(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contacts)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload contactRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Create(request.Context(), ownerID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, contact)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload contactRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Update(request.Context(), ownerID, requestutil.Param(request, FieldID), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

// remove deletes a contact and echoes its prior state back to the client.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Delete(request.Context(), ownerID, requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}
