package bootstrap

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/casaloop/casaloop-backend/config"
	"github.com/casaloop/casaloop-backend/internal/analytics"
	httpapi "github.com/casaloop/casaloop-backend/internal/api/http"
	apimw "github.com/casaloop/casaloop-backend/internal/api/http/middleware"
	authhttp "github.com/casaloop/casaloop-backend/internal/auth/http"
	authmw "github.com/casaloop/casaloop-backend/internal/auth/middleware"
	authsvc "github.com/casaloop/casaloop-backend/internal/auth/service"
	listingshttp "github.com/casaloop/casaloop-backend/internal/listings/http"
	listingsrepo "github.com/casaloop/casaloop-backend/internal/listings/repository"
	listingssvc "github.com/casaloop/casaloop-backend/internal/listings/service"
	msghttp "github.com/casaloop/casaloop-backend/internal/messaging/http"
	msgrepo "github.com/casaloop/casaloop-backend/internal/messaging/repository"
	msgsvc "github.com/casaloop/casaloop-backend/internal/messaging/service"
	"github.com/casaloop/casaloop-backend/internal/metrics"
	notifhttp "github.com/casaloop/casaloop-backend/internal/notifications/http"
	notifrepo "github.com/casaloop/casaloop-backend/internal/notifications/repository"
	notifsvc "github.com/casaloop/casaloop-backend/internal/notifications/service"
	payhttp "github.com/casaloop/casaloop-backend/internal/payments/http"
	payrepo "github.com/casaloop/casaloop-backend/internal/payments/repository"
	paysvc "github.com/casaloop/casaloop-backend/internal/payments/service"
	"github.com/casaloop/casaloop-backend/internal/pi"
	provhttp "github.com/casaloop/casaloop-backend/internal/providers/http"
	provrepo "github.com/casaloop/casaloop-backend/internal/providers/repository"
	provsvc "github.com/casaloop/casaloop-backend/internal/providers/service"
	reshttp "github.com/casaloop/casaloop-backend/internal/reservations/http"
	resrepo "github.com/casaloop/casaloop-backend/internal/reservations/repository"
	ressvc "github.com/casaloop/casaloop-backend/internal/reservations/service"
	revhttp "github.com/casaloop/casaloop-backend/internal/reviews/http"
	revrepo "github.com/casaloop/casaloop-backend/internal/reviews/repository"
	revsvc "github.com/casaloop/casaloop-backend/internal/reviews/service"
	rwdhttp "github.com/casaloop/casaloop-backend/internal/rewards/http"
	rwdsvc "github.com/casaloop/casaloop-backend/internal/rewards/service"
	trusthttp "github.com/casaloop/casaloop-backend/internal/trust/http"
	trustrepo "github.com/casaloop/casaloop-backend/internal/trust/repository"
	trustsvc "github.com/casaloop/casaloop-backend/internal/trust/service"
	usershttp "github.com/casaloop/casaloop-backend/internal/users/http"
	usersrepo "github.com/casaloop/casaloop-backend/internal/users/repository"
	userssvc "github.com/casaloop/casaloop-backend/internal/users/service"
)

// RouterDeps carries the process-level dependencies into the router.
type RouterDeps struct {
	ServiceName string
	Version     string
	Cfg         *config.Config
	Firestore   *firestore.Client
	Redis       *redis.Client
	DB          *pgxpool.Pool
	Pi          *pi.Client
}

// purposeConfirmer bridges the payment flow to the two purposes a
// payment can settle.
type purposeConfirmer struct {
	reservations *ressvc.ReservationService
	bookings     *provrepo.ProviderRepository
}

func (p purposeConfirmer) ConfirmReservation(ctx context.Context, reservationID, paymentID string, paidAt int64) error {
	return p.reservations.ConfirmReservation(ctx, reservationID, paymentID, paidAt)
}

func (p purposeConfirmer) ConfirmBooking(ctx context.Context, bookingID, paymentID string, paidAt int64) error {
	return p.bookings.ConfirmBookingPayment(ctx, bookingID, paymentID, paidAt)
}

// BuildRouter wires every feature and returns the gin engine.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(apimw.RequestIDMiddleware())
	r.Use(metrics.Middleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Firestore, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	// Repositories.
	userRepo := usersrepo.NewUserRepository(dep.Firestore)
	propRepo := listingsrepo.NewPropertyRepository(dep.Firestore)
	provRepo := provrepo.NewProviderRepository(dep.Firestore)
	resRepo := resrepo.NewReservationRepository(dep.Firestore)
	convRepo := msgrepo.NewConversationRepository(dep.Firestore)
	notifRepo := notifrepo.NewNotificationRepository(dep.Firestore)
	reviewRepo := revrepo.NewReviewRepository(dep.Firestore)
	verifRepo := trustrepo.NewVerificationRepository(dep.Firestore)
	payRepo := payrepo.NewPaymentLogRepository(dep.Firestore)

	// Cross-cutting services.
	tracker := rwdsvc.NewTracker(userRepo)
	notifier := notifsvc.NewNotificationService(notifRepo)
	trustService := trustsvc.NewTrustService(verifRepo)
	analyticsStore := analytics.NewStore(dep.DB)

	// Feature services.
	listingService := listingssvc.NewListingService(propRepo, trustService, tracker, notifier, dep.Redis)
	providerService := provsvc.NewProviderService(provRepo, tracker, notifier)
	reservationService := ressvc.NewReservationService(resRepo, propRepo, notifier)
	messagingService := msgsvc.NewMessagingService(convRepo, notifier, tracker)
	reviewService := revsvc.NewReviewService(reviewRepo, propRepo, provRepo, notifier, tracker, trustService)
	rewardService := rwdsvc.NewRewardService(userRepo, notifier)
	userService := userssvc.NewUserService(userRepo, tracker)
	authService := authsvc.NewAuthService(dep.Pi, userRepo, dep.Cfg.Pi.AuthTimeout)
	verificationService := paysvc.NewVerificationService(
		dep.Pi, payRepo, userRepo,
		purposeConfirmer{reservations: reservationService, bookings: provRepo},
		notifier, tracker, trustService, analyticsStore, dep.Redis,
	)

	api := r.Group("/api/v1")

	// Signin is the only route outside the authenticated group.
	authhttp.NewHandler(authService).Register(api.Group("/auth"))

	authed := api.Group("")
	authed.Use(authmw.PiAuthMiddleware(dep.Pi, dep.Redis))

	usershttp.NewHandler(userService).Register(authed.Group("/users"))
	trusthttp.NewHandler(trustService).Register(authed.Group("/trust"))
	listingshttp.NewHandler(listingService).Register(authed.Group("/listings"))

	providerHandler := provhttp.NewHandler(providerService)
	providerHandler.Register(authed.Group("/services"))
	providerHandler.RegisterBookings(authed.Group("/bookings"))

	reshttp.NewHandler(reservationService).Register(authed.Group("/reservations"))
	msghttp.NewHandler(messagingService).Register(authed.Group("/conversations"))
	notifhttp.NewHandler(notifier).Register(authed.Group("/notifications"))

	reviewHandler := revhttp.NewHandler(reviewService)
	reviewHandler.Register(authed.Group("/reviews"))
	reviewHandler.RegisterReports(authed.Group("/reports"))

	rwdhttp.NewHandler(rewardService).Register(authed.Group("/rewards"))
	payhttp.NewHandler(verificationService).Register(authed.Group("/payments"))

	return r
}
