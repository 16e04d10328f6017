package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
	answeruc "github.com/helio-cloud/groundex/internal/usecase/answer"
	healthuc "github.com/helio-cloud/groundex/internal/usecase/health"
	ingestuc "github.com/helio-cloud/groundex/internal/usecase/ingest"
	retrievaluc "github.com/helio-cloud/groundex/internal/usecase/retrieval"
)

// Error response codes.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeEmptyQuery          = "empty_query"
	codeContentFlagged      = "content_flagged"
	codeDocumentNotFound    = "document_not_found"
	codeVectorDimMismatch   = "vector_dim_mismatch"
	codeProviderUnavailable = "provider_unavailable"
	codeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the retrieval API over chi.
type Server struct {
	retrieval     *retrievaluc.Service
	answer        *answeruc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. answer may be nil when generation
// is not configured; the /answer route then returns 404.
func NewServer(
	retrieval *retrievaluc.Service,
	answer *answeruc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retrieval: retrieval,
		answer:    answer,
		ingest:    ingest,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		contentFlaggedHandler,
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderUnavailable),
		sentinelHandler(domain.ErrModerationProviderError, http.StatusBadGateway, codeProviderUnavailable),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeProviderUnavailable),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/retrieve", s.Retrieve)
		if s.answer != nil {
			r.Post("/answer", s.Answer)
		}
		r.Put("/documents/{documentID}", s.IngestDocument)
		r.Delete("/documents/{documentID}", s.DeleteDocument)
	})
}

// --- DTOs ---

type retrieveRequest struct {
	Query   string `json:"query"`
	Profile string `json:"profile,omitempty"`
}

type sourceResponse struct {
	PassageID    string  `json:"passage_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	SectionTitle string  `json:"section_title,omitempty"`
	Similarity   float64 `json:"similarity"`
	Source       string  `json:"source"`
}

type retrieveResponse struct {
	Context string           `json:"context"`
	Sources []sourceResponse `json:"sources"`
	Profile string           `json:"profile"`
	Tokens  int              `json:"tokens"`
}

type ingestRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Passages    []ingestPassage `json:"passages"`
}

type ingestPassage struct {
	ID           string    `json:"id"`
	SectionTitle string    `json:"section_title,omitempty"`
	Content      string    `json:"content"`
	Embedding    []float32 `json:"embedding"`
	TokenCount   int       `json:"token_count,omitempty"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Passages   int    `json:"passages"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// Retrieve handles POST /api/v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.retrieval.Retrieve(r.Context(), req.Query, req.Profile)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Context: res.ContextText,
		Sources: sourcesToResponse(res.Sources),
		Profile: res.Profile.Name,
		Tokens:  res.TokenCount,
	})
}

// Answer handles POST /api/v1/answer as an SSE stream: "chunk" events carry
// answer text deltas, a final "sources" event carries the grounding list.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := s.answer.Answer(r.Context(), req.Query, req.Profile)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternalError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for chunk := range ans.Chunks {
		if chunk.Err != nil {
			s.logger.Warn("Generation stream failed mid-answer", zap.Error(chunk.Err))
			writeSSE(w, "error", errorResponse{Code: codeProviderUnavailable, Message: "generation interrupted"})
			flusher.Flush()
			return
		}
		writeSSE(w, "chunk", map[string]string{"text": chunk.Text})
		flusher.Flush()
	}

	writeSSE(w, "sources", sourcesToResponse(ans.Sources))
	flusher.Flush()
}

// IngestDocument handles PUT /api/v1/documents/{documentID}.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	passages := make([]ingestuc.PassageInput, len(req.Passages))
	for i, p := range req.Passages {
		passages[i] = ingestuc.PassageInput{
			ID:           p.ID,
			SectionTitle: p.SectionTitle,
			Content:      p.Content,
			Embedding:    p.Embedding,
			TokenCount:   p.TokenCount,
		}
	}

	doc := ingestuc.DocumentInput{
		ID:          documentID,
		Name:        req.Name,
		Description: req.Description,
	}

	n, err := s.ingest.Ingest(r.Context(), doc, passages)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{DocumentID: documentID, Passages: n})
}

// DeleteDocument handles DELETE /api/v1/documents/{documentID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")

	if _, err := s.ingest.Delete(r.Context(), documentID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Error handling ---

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrContentFlagged,
		domain.ErrInvalidDocument,
		domain.ErrDocumentNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrModerationProviderError,
		domain.ErrGenerationProviderError,
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

// contentFlaggedHandler handles moderation rejections with the flagged categories.
func contentFlaggedHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrContentFlagged) {
		return false
	}
	var cfe *domain.ContentFlaggedError
	if errors.As(err, &cfe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":       codeContentFlagged,
			"message":    msg,
			"categories": cfe.Categories,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, codeContentFlagged, msg)
	return true
}

// --- Helpers ---

func sourcesToResponse(cands []candidate.Candidate) []sourceResponse {
	out := make([]sourceResponse, len(cands))
	for i := range cands {
		p := cands[i].Passage()
		out[i] = sourceResponse{
			PassageID:    p.ID(),
			DocumentID:   p.DocumentID(),
			DocumentName: p.DocumentName(),
			SectionTitle: p.SectionTitle(),
			Similarity:   cands[i].Similarity(),
			Source:       string(cands[i].Source()),
		}
	}
	return out
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

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
}
