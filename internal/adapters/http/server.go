// Package httpadapter exposes the product over a chi-routed JSON API.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"leadblitz/internal/adapters/stripe"
	"leadblitz/internal/domain"
	"leadblitz/internal/ports"
	"leadblitz/internal/services/billing"
	"leadblitz/internal/services/credits"
	"leadblitz/internal/services/enrichment"
	"leadblitz/internal/services/outreach"
	"leadblitz/internal/services/places"
	"leadblitz/internal/workers/batchrunner"
)

// Scorer is the synchronous scoring entry point.
type Scorer interface {
	ScoreWebsite(ctx context.Context, url string, useCache bool) domain.CombinedResult
}

// Enricher finds contact details for one website.
type Enricher interface {
	Enrich(ctx context.Context, websiteURL string) (enrichment.Result, error)
}

type Server struct {
	places        *places.Service
	scorer        Scorer
	batch         *batchrunner.Runner
	status        ports.StatusStore
	credits       *credits.Service
	billing       *billing.Service
	outreach      *outreach.Service
	enricher      Enricher
	leads         ports.LeadRepository
	webhookSecret string
}

func New(
	pl *places.Service,
	scorer Scorer,
	batch *batchrunner.Runner,
	status ports.StatusStore,
	cr *credits.Service,
	bl *billing.Service,
	out *outreach.Service,
	enricher Enricher,
	leads ports.LeadRepository,
	webhookSecret string,
) *Server {
	return &Server{
		places:        pl,
		scorer:        scorer,
		batch:         batch,
		status:        status,
		credits:       cr,
		billing:       bl,
		outreach:      out,
		enricher:      enricher,
		leads:         leads,
		webhookSecret: webhookSecret,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/webhooks/stripe", s.handleStripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/search", s.handleSearch)
		r.Post("/leads/{id}/score", s.handleScoreLead)
		r.Post("/leads/{id}/enrich", s.handleEnrichLead)
		r.Post("/leads/{id}/sms", s.handleSendSMS)
		r.Post("/leads/{id}/email", s.handleSendEmail)
		r.Post("/leads/{id}/personalize-email", s.handlePersonalizeEmail)
		r.Post("/leads/score-batch", s.handleScoreBatch)
		r.Get("/batches/{id}", s.handleBatchStatus)
		r.Get("/credits/balance", s.handleBalance)
		r.Get("/credits/transactions", s.handleTransactions)
		r.Get("/billing/packages", s.handlePackages)
		r.Post("/billing/checkout", s.handleCheckout)
	})
	return r
}

type ctxKey int

const userIDKey ctxKey = 0

// requireUser reads the authenticated user id set by the edge proxy.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	CampaignID   string `json:"campaign_id"`
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
	PageToken    string `json:"page_token"`
	Limit        int    `json:"limit"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.BusinessType == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "business_type and location are required")
		return
	}
	res, err := s.places.Search(r.Context(), userID(r), req.CampaignID, req.BusinessType, req.Location, req.PageToken, req.Limit)
	if err != nil {
		zap.L().Error("search failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type scoreRequest struct {
	UseCache *bool `json:"use_cache"`
}

func (s *Server) handleScoreLead(w http.ResponseWriter, r *http.Request) {
	useCache := true
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.UseCache != nil {
		useCache = *req.UseCache
	}

	lead, err := s.leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeLeadError(w, err)
		return
	}
	if lead.Website == "" {
		writeError(w, http.StatusUnprocessableEntity, "lead has no website")
		return
	}

	enough, balance, cost, err := s.credits.HasSufficient(r.Context(), userID(r), credits.ActionAIScoring, 1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "credit check failed")
		return
	}
	if !enough {
		writeInsufficientCredits(w, balance, cost)
		return
	}
	// The pre-check can race a concurrent debit; the debit itself is atomic.
	ok, balance, err := s.credits.Debit(r.Context(), userID(r), credits.ActionAIScoring, 1, "Score "+lead.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "credit check failed")
		return
	}
	if !ok {
		writeInsufficientCredits(w, balance, cost)
		return
	}

	result := s.scorer.ScoreWebsite(r.Context(), lead.Website, useCache)
	if err := s.leads.SaveScore(r.Context(), lead.ID, result); err != nil {
		zap.L().Error("saving score failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEnrichLead(w http.ResponseWriter, r *http.Request) {
	lead, err := s.leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeLeadError(w, err)
		return
	}
	if lead.Website == "" {
		writeError(w, http.StatusUnprocessableEntity, "lead has no website")
		return
	}
	res, err := s.enricher.Enrich(r.Context(), lead.Website)
	if err != nil {
		writeError(w, http.StatusBadGateway, "enrichment failed")
		return
	}
	if res.Email != "" || res.Phone != "" {
		if err := s.leads.SaveContact(r.Context(), lead.ID, res.Email, res.Phone); err != nil {
			zap.L().Error("saving contact failed", zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, res)
}

type smsRequest struct {
	Template string `json:"template"`
}

func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Template == "" {
		writeError(w, http.StatusBadRequest, "template is required")
		return
	}
	lead, err := s.leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeLeadError(w, err)
		return
	}
	msgID, err := s.outreach.SendSMS(r.Context(), userID(r), lead, req.Template)
	if err != nil {
		if errors.Is(err, outreach.ErrInsufficientCredits) {
			writeError(w, http.StatusPaymentRequired, "insufficient credits")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message_id": msgID})
}

type emailRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subject == "" {
		writeError(w, http.StatusBadRequest, "subject and body are required")
		return
	}
	lead, err := s.leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeLeadError(w, err)
		return
	}
	if err := s.outreach.SendEmail(r.Context(), userID(r), lead, req.Subject, req.Body); err != nil {
		if errors.Is(err, outreach.ErrInsufficientCredits) {
			writeError(w, http.StatusPaymentRequired, "insufficient credits")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handlePersonalizeEmail(w http.ResponseWriter, r *http.Request) {
	lead, err := s.leads.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeLeadError(w, err)
		return
	}
	draft, err := s.outreach.PersonalizeEmail(r.Context(), userID(r), lead)
	if err != nil {
		if errors.Is(err, outreach.ErrInsufficientCredits) {
			writeError(w, http.StatusPaymentRequired, "insufficient credits")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

type batchRequest struct {
	LeadIDs []string `json:"lead_ids"`
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LeadIDs) == 0 {
		writeError(w, http.StatusBadRequest, "lead_ids is required")
		return
	}
	// Detached from the request context so the batch survives disconnect.
	batchID := s.batch.Start(context.WithoutCancel(r.Context()), userID(r), req.LeadIDs)
	writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": batchID})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := s.status.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	c, err := s.credits.Balance(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "balance lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.credits.History(r.Context(), userID(r), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history lookup failed")
		return
	}
	if txs == nil {
		txs = []domain.CreditTransaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, billing.Packages())
}

type checkoutRequest struct {
	PackageID  string `json:"package_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageID == "" {
		writeError(w, http.StatusBadRequest, "package_id is required")
		return
	}
	sess, err := s.billing.CreateCheckout(r.Context(), userID(r), req.PackageID, req.SuccessURL, req.CancelURL)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPackage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "checkout failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID, "url": sess.URL})
}

func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	ev, err := stripe.ParseEvent(payload, r.Header.Get("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		zap.L().Warn("webhook rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "signature verification failed")
		return
	}

	switch ev.Type {
	case "checkout.session.completed":
		sess, err := ev.CompletedSession()
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed session")
			return
		}
		if err := s.billing.FulfillCheckout(r.Context(), sess); err != nil {
			zap.L().Error("fulfillment failed", zap.String("session_id", sess.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "fulfillment failed")
			return
		}
	default:
		zap.L().Debug("ignoring webhook event", zap.String("type", ev.Type))
	}
	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

func writeInsufficientCredits(w http.ResponseWriter, balance, cost int) {
	writeJSON(w, http.StatusPaymentRequired, map[string]any{
		"error":   "insufficient credits",
		"balance": balance,
		"cost":    cost,
	})
}

func writeLeadError(w http.ResponseWriter, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "lead lookup failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
