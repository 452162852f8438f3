package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arbrepalabres/backend/api/controllers"
	"github.com/arbrepalabres/backend/api/middleware"
	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/debates"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/internal/notifications"
	"github.com/arbrepalabres/backend/internal/registration"
	"github.com/arbrepalabres/backend/internal/withdrawals"
	"github.com/arbrepalabres/backend/pkg/config"
	"github.com/arbrepalabres/backend/pkg/db"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/pubsub"
	"github.com/arbrepalabres/backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	registrationService registration.Service,
	candidatesService candidates.Service,
	ledgerService ledger.Service,
	withdrawalsService withdrawals.Service,
	debatesService debates.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Actor(logg),
			middleware.Idempotency(redisClient, logg),
		)

		r.Route("/candidates", func(r chi.Router) {
			r.With(middleware.RateLimit(registerPolicy, redisClient, logg)).
				Post("/", controllers.SubmitRegistration(registrationService, logg))
			r.Get("/ranking", controllers.CandidateRanking(candidatesService, logg))
			r.Get("/{candidateId}", controllers.GetCandidate(candidatesService, logg))
			r.Get("/{candidateId}/transactions", controllers.CandidateTransactions(ledgerService, logg))
			r.Get("/{candidateId}/notifications", controllers.CandidateNotifications(notificationsService, logg))
			r.Post("/{candidateId}/notifications/read", controllers.MarkAllNotificationsRead(notificationsService, logg))
			r.Post("/{candidateId}/notifications/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/withdrawals", controllers.RequestWithdrawal(withdrawalsService, logg))
			r.Get("/{transactionId}", controllers.GetTransaction(ledgerService, logg))
			r.Post("/{transactionId}/resolve", controllers.ResolveTransaction(ledgerService, logg))
		})

		r.Route("/debates", func(r chi.Router) {
			r.Get("/", controllers.ListDebates(debatesService, logg))
			r.Post("/", controllers.CreateStandardDebate(debatesService, logg))
			r.Post("/challenge", controllers.CreateChallengeDebate(debatesService, logg))
			r.Get("/{debateId}", controllers.GetDebate(debatesService, logg))
			r.Post("/{debateId}/start", controllers.StartDebate(debatesService, logg))
			r.Post("/{debateId}/close", controllers.CloseDebate(debatesService, logg))
			r.Put("/{debateId}/scores", controllers.UpdateScores(debatesService, logg))
		})
	})

	return r
}
