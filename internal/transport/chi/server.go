// Package chi is the HTTP transport: hand-registered chi routes over
// the usecase services, with a sentinel-to-status error chain.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leaf-cloud/straindex/internal/domain"
	"github.com/leaf-cloud/straindex/internal/usecase/ask"
	healthuc "github.com/leaf-cloud/straindex/internal/usecase/health"
)

// Error response codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeNotFound           = "not_found"
	codeAlreadyExists      = "already_exists"
	codeVectorDimMismatch  = "vector_dim_mismatch"
	codeRateLimited        = "rate_limited"
	codeStoreUnavailable   = "store_unavailable"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeChatProvider       = "chat_provider_error"
	codeChatNotConfigured  = "chat_not_configured"
	codeInternalError      = "internal_error"
)

// timeNow is swapped in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	ask           AskService
	terpenes      TerpeneService
	strains       StrainService
	analytics     AnalyticsService
	events        EventEmitter
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	askSvc AskService,
	terpenes TerpeneService,
	strains StrainService,
	analytics AnalyticsService,
	events EventEmitter,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ask:       askSvc,
		terpenes:  terpenes,
		strains:   strains,
		analytics: analytics,
		events:    events,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, codeChatProvider),
		sentinelHandler(domain.ErrChatNotConfigured, http.StatusServiceUnavailable, codeChatNotConfigured),
	}
	return s
}

// Routes assembles the route tree. Health and metrics stay unversioned.
func (s *Server) Routes() *gochi.Mux {
	r := gochi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/openai/ask", s.handleAsk)

		r.Route("/terpenes", func(r gochi.Router) {
			r.Post("/", s.handleCreateTerpene)
			r.Get("/", s.handleListTerpenes)
			r.Get("/search", s.handleSearchTerpene)
			r.Post("/query", s.handleQueryTerpenes)
			r.Route("/{id}", func(r gochi.Router) {
				r.Get("/", s.handleGetTerpene)
				r.Patch("/", s.handlePatchTerpene)
				r.Delete("/", s.handleDeleteTerpene)
				r.Put("/strains/{strainId}", s.handleAttachStrain)
				r.Delete("/strains/{strainId}", s.handleDetachStrain)
			})
		})

		r.Route("/strains", func(r gochi.Router) {
			r.Post("/", s.handleCreateStrain)
			r.Get("/", s.handleListStrains)
			r.Route("/{id}", func(r gochi.Router) {
				r.Get("/", s.handleGetStrain)
				r.Patch("/", s.handlePatchStrain)
				r.Delete("/", s.handleDeleteStrain)
			})
		})

		r.Route("/events", func(r gochi.Router) {
			r.Post("/", s.handleEmitEvent)
			r.Get("/users/{userId}", s.handleJourney)
		})

		r.Route("/analytics/users/{userId}", func(r gochi.Router) {
			r.Get("/behavior", s.handleBehavior)
			r.Get("/similar", s.handleSimilarUsers)
			r.Get("/engagement", s.handleEngagement)
			r.Get("/next-action", s.handleNextAction)
		})
	})

	return r
}

// handleAsk handles POST /api/v1/openai/ask.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.ask.Ask(r.Context(), ask.Request{
		Question: req.Question,
		Model:    req.Model,
		System:   req.SystemMessage,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventAnswerGenerated, domain.CategoryLearning, map[string]string{
		"model": out.Model,
	})
	writeJSON(w, http.StatusOK, toAskResponse(out))
}

// handleCreateTerpene handles POST /api/v1/terpenes.
func (s *Server) handleCreateTerpene(w http.ResponseWriter, r *http.Request) {
	var req terpeneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t := req.toDomain()
	if err := s.terpenes.Create(r.Context(), &t); err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventTerpeneCreated, domain.CategoryLearning, map[string]string{
		"terpene": t.Name,
	})
	w.Header().Set("Location", "/api/v1/terpenes/"+t.ID)
	writeJSON(w, http.StatusCreated, toTerpeneResponse(t))
}

// handleListTerpenes handles GET /api/v1/terpenes.
func (s *Server) handleListTerpenes(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagingParams(r)

	items, total, err := s.terpenes.List(r.Context(), page, pageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]terpeneResponse, 0, len(items))
	for _, t := range items {
		out = append(out, toTerpeneResponse(t))
	}
	writeJSON(w, http.StatusOK, terpeneListResponse{
		Items:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// handleSearchTerpene handles GET /api/v1/terpenes/search?name=.
func (s *Server) handleSearchTerpene(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	t, err := s.terpenes.FindByName(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventSearchPerformed, domain.CategoryBrowsing, map[string]string{
		"terpene": t.Name,
	})
	writeJSON(w, http.StatusOK, toTerpeneResponse(t))
}

// handleQueryTerpenes handles POST /api/v1/terpenes/query.
func (s *Server) handleQueryTerpenes(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.terpenes.Query(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventQueryExecuted, domain.CategoryLearning, map[string]string{
		"question": req.Question,
	})
	writeJSON(w, http.StatusOK, toQueryResponse(out))
}

// handleGetTerpene handles GET /api/v1/terpenes/{id}.
func (s *Server) handleGetTerpene(w http.ResponseWriter, r *http.Request) {
	t, err := s.terpenes.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventTerpeneViewed, domain.CategoryLearning, map[string]string{
		"terpene": t.Name,
	})
	writeJSON(w, http.StatusOK, toTerpeneResponse(t))
}

// handlePatchTerpene handles PATCH /api/v1/terpenes/{id}.
func (s *Server) handlePatchTerpene(w http.ResponseWriter, r *http.Request) {
	var req terpenePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := s.terpenes.Update(r.Context(), gochi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTerpeneResponse(t))
}

// handleDeleteTerpene handles DELETE /api/v1/terpenes/{id}.
func (s *Server) handleDeleteTerpene(w http.ResponseWriter, r *http.Request) {
	if err := s.terpenes.Delete(r.Context(), gochi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAttachStrain handles PUT /api/v1/terpenes/{id}/strains/{strainId}.
func (s *Server) handleAttachStrain(w http.ResponseWriter, r *http.Request) {
	t, err := s.terpenes.AttachStrain(r.Context(),
		gochi.URLParam(r, "id"), gochi.URLParam(r, "strainId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTerpeneResponse(t))
}

// handleDetachStrain handles DELETE /api/v1/terpenes/{id}/strains/{strainId}.
func (s *Server) handleDetachStrain(w http.ResponseWriter, r *http.Request) {
	t, err := s.terpenes.DetachStrain(r.Context(),
		gochi.URLParam(r, "id"), gochi.URLParam(r, "strainId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTerpeneResponse(t))
}

// handleCreateStrain handles POST /api/v1/strains.
func (s *Server) handleCreateStrain(w http.ResponseWriter, r *http.Request) {
	var req strainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	st := req.toDomain()
	if err := s.strains.Create(r.Context(), &st); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/strains/"+st.ID)
	writeJSON(w, http.StatusCreated, toStrainResponse(st))
}

// handleListStrains handles GET /api/v1/strains.
func (s *Server) handleListStrains(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagingParams(r)

	items, total, err := s.strains.List(r.Context(), page, pageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]strainResponse, 0, len(items))
	for _, st := range items {
		out = append(out, toStrainResponse(st))
	}
	writeJSON(w, http.StatusOK, strainListResponse{
		Items:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// handleGetStrain handles GET /api/v1/strains/{id}.
func (s *Server) handleGetStrain(w http.ResponseWriter, r *http.Request) {
	st, err := s.strains.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.emitUsage(r, domain.EventStrainViewed, domain.CategoryBrowsing, map[string]string{
		"strain": st.Name,
	})
	writeJSON(w, http.StatusOK, toStrainResponse(st))
}

// handlePatchStrain handles PATCH /api/v1/strains/{id}.
func (s *Server) handlePatchStrain(w http.ResponseWriter, r *http.Request) {
	var req strainPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	st, err := s.strains.Update(r.Context(), gochi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStrainResponse(st))
}

// handleDeleteStrain handles DELETE /api/v1/strains/{id}.
func (s *Server) handleDeleteStrain(w http.ResponseWriter, r *http.Request) {
	if err := s.strains.Delete(r.Context(), gochi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEmitEvent handles POST /api/v1/events. The response only
// confirms acceptance: classification, persistence, the vector mirror
// and bus dispatch all run detached from the request.
func (s *Server) handleEmitEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e := req.toDomain()
	if err := e.Validate(); err != nil {
		s.handleDomainError(w, err)
		return
	}
	e.Normalize(timeNow())

	s.events.EmitAsync(e)
	writeJSON(w, http.StatusAccepted, eventAcceptedResponse{ID: e.ID, Status: "accepted"})
}

// handleJourney handles GET /api/v1/events/users/{userId}.
func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	userID := gochi.URLParam(r, "userId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := s.analytics.Journey(r.Context(), userID, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]interactionResponse, 0, len(items))
	for _, in := range items {
		out = append(out, toInteractionResponse(in))
	}
	writeJSON(w, http.StatusOK, journeyResponse{UserID: userID, Items: out})
}

// handleBehavior handles GET /api/v1/analytics/users/{userId}/behavior.
func (s *Server) handleBehavior(w http.ResponseWriter, r *http.Request) {
	pattern, err := s.analytics.BehaviorPattern(r.Context(), gochi.URLParam(r, "userId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBehaviorResponse(pattern))
}

// handleSimilarUsers handles GET /api/v1/analytics/users/{userId}/similar.
func (s *Server) handleSimilarUsers(w http.ResponseWriter, r *http.Request) {
	userID := gochi.URLParam(r, "userId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	users, err := s.analytics.SimilarUsers(r.Context(), userID, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSimilarUsersResponse(userID, users))
}

// handleEngagement handles GET /api/v1/analytics/users/{userId}/engagement.
func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request) {
	m, err := s.analytics.Engagement(r.Context(), gochi.URLParam(r, "userId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEngagementResponse(m))
}

// handleNextAction handles GET /api/v1/analytics/users/{userId}/next-action.
func (s *Server) handleNextAction(w http.ResponseWriter, r *http.Request) {
	pred := s.analytics.PredictNextAction(r.Context(), gochi.URLParam(r, "userId"))
	writeJSON(w, http.StatusOK, toPredictionResponse(pred))
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// emitUsage fires a behavioral event for the calling user, identified by
// the X-User-ID header. Anonymous requests emit nothing.
func (s *Server) emitUsage(r *http.Request, eventType string, category domain.Category, metadata map[string]string) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" || s.events == nil {
		return
	}
	s.events.EmitAsync(&domain.UserEvent{
		UserID:    userID,
		EventType: eventType,
		Category:  category,
		Metadata:  metadata,
		SessionID: r.Header.Get("X-Session-ID"),
		Source:    "api",
	})
}

func pagingParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrStoreUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrChatProviderError,
		domain.ErrChatNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("Domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
