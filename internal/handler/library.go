package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/internal/service"
	"github.com/segyhp/ludoteca/internal/validation"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/logger"
	"github.com/segyhp/ludoteca/pkg/response"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type LibraryHandler struct {
	service   *service.LibraryService
	validator *validator.Validate
	log       logger.Logger
}

func NewLibraryHandler(service *service.LibraryService, log logger.Logger) *LibraryHandler {
	return &LibraryHandler{
		service:   service,
		validator: validation.New(service.Now),
		log:       log,
	}
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type snapshotResult struct {
	SavedAt time.Time `json:"saved_at"`
}

// RegisterGame handles POST /games
func (h *LibraryHandler) RegisterGame(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	game, err := h.service.RegisterGame(req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, game)
}

// ListGames handles GET /games?available=true
func (h *LibraryHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	availableOnly, ok := boolQuery(w, r, "available")
	if !ok {
		return
	}
	response.Success(w, h.service.Games(availableOnly))
}

// GetGame handles GET /games/{id}
func (h *LibraryHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	game, err := h.service.Game(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, game)
}

// RegisterMember handles POST /members
func (h *LibraryHandler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	member, err := h.service.RegisterMember(req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, member)
}

// ListMembers handles GET /members?with_fine=true
func (h *LibraryHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	withFineOnly, ok := boolQuery(w, r, "with_fine")
	if !ok {
		return
	}
	response.Success(w, h.service.Members(withFineOnly))
}

// GetMember handles GET /members/{id}
func (h *LibraryHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	member, err := h.service.Member(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, member)
}

// SetMemberActive handles PUT /members/{id}/active
func (h *LibraryHandler) SetMemberActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req setActiveRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.service.SetMemberActive(id, *req.Active)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, member)
}

// PayFine handles POST /members/{id}/fine-payments
func (h *LibraryHandler) PayFine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req domain.PayFineRequest
	if !h.decode(w, r, &req) {
		return
	}

	receipt, err := h.service.PayFine(id, req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, receipt)
}

// IssueLoan handles POST /loans
func (h *LibraryHandler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueLoanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	loan, err := h.service.IssueLoan(req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, loan)
}

// ListLoans handles GET /loans?status=active|overdue|finished
func (h *LibraryHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.Loans(r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loans)
}

// GetLoan handles GET /loans/{id}
func (h *LibraryHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.Loan(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

// PreviewFine handles GET /loans/{id}/fine
func (h *LibraryHandler) PreviewFine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	preview, err := h.service.PreviewFine(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, preview)
}

// ReturnLoan handles POST /loans/{id}/return
func (h *LibraryHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loan, err := h.service.ReturnLoan(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

// Report handles GET /report. With format=text the rendered document is
// returned instead of the JSON figures.
func (h *LibraryHandler) Report(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := h.service.RenderReport(w); err != nil {
			h.log.InternalError("rendering report failed", err)
		}
		return
	}
	response.Success(w, h.service.Report())
}

// Snapshot handles POST /snapshot
func (h *LibraryHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	savedAt, err := h.service.Save(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, snapshotResult{SavedAt: savedAt})
}

func (h *LibraryHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func (h *LibraryHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !h.decode(w, r, dst) {
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.FromError(w, validation.Translate(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.FromError(w, customError.WrapInvalidInput("id must be a valid UUID, got '"+raw+"'"))
		return uuid.Nil, false
	}
	return id, true
}

func boolQuery(w http.ResponseWriter, r *http.Request, key string) (bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		response.FromError(w, customError.WrapInvalidInput(key+" must be true or false"))
		return false, false
	}
	return value, true
}
