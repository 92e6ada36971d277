// Package meetexpert собирает основное приложение: хранилище, кэш,
// брокер сообщений, платёжный шлюз, сервисы и HTTP-сервер.
package meetexpert

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/meetexpert/meetexpert/internal/bkash"
	"github.com/meetexpert/meetexpert/internal/cache"
	"github.com/meetexpert/meetexpert/internal/config"
	"github.com/meetexpert/meetexpert/internal/lib/jwt"
	"github.com/meetexpert/meetexpert/internal/lib/sl"
	"github.com/meetexpert/meetexpert/internal/migrations"
	"github.com/meetexpert/meetexpert/internal/rabbitmq"
	adminservice "github.com/meetexpert/meetexpert/internal/services/admin"
	authservice "github.com/meetexpert/meetexpert/internal/services/auth"
	chatservice "github.com/meetexpert/meetexpert/internal/services/chat"
	expertservice "github.com/meetexpert/meetexpert/internal/services/expert"
	expertrequestservice "github.com/meetexpert/meetexpert/internal/services/expertrequest"
	notificationservice "github.com/meetexpert/meetexpert/internal/services/notification"
	postservice "github.com/meetexpert/meetexpert/internal/services/post"
	ratingservice "github.com/meetexpert/meetexpert/internal/services/rating"
	subscriptionservice "github.com/meetexpert/meetexpert/internal/services/subscription"
	walletservice "github.com/meetexpert/meetexpert/internal/services/wallet"
	"github.com/meetexpert/meetexpert/internal/storage/repository"
)

// App объединяет зависимости HTTP-сервера MeetExpert.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	mq     *amqp.Connection
}

// Services собирает бизнес-логику, необходимую маршрутам приложения.
type Services struct {
	Auth          *authservice.AuthService
	Wallet        *walletservice.WalletService
	Subscription  *subscriptionservice.SubscriptionService
	Expert        *expertservice.ExpertService
	Rating        *ratingservice.RatingService
	Post          *postservice.PostService
	Chat          *chatservice.ChatService
	Notification  *notificationservice.NotificationService
	ExpertRequest *expertrequestservice.ExpertRequestService
	Admin         *adminservice.AdminService
}

// New подключает хранилище, применяет миграции и собирает сервисы с маршрутами.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Почтовый канал опционален: без брокера уведомления остаются
	// только внутри платформы.
	var mq *amqp.Connection
	var publisher notificationservice.Publisher
	mq, err = rabbitmq.Connect(cfg.RabbitMQ.RabbitMQURL, cfg.RabbitMQ.RabbitMQMaxRetries, cfg.RabbitMQ.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("rabbitmq is unavailable, email notifications disabled", sl.Err(err))
		mq = nil
	} else {
		ch, chErr := rabbitmq.SetupChannel(mq, rabbitmq.GetNotificationQueues())
		if chErr != nil {
			return nil, chErr
		}
		publisher = rabbitmq.NewPublisher(ch)
	}

	maker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	gateway := bkash.New(cfg.Bkash)

	notificationService := notificationservice.New(db, publisher, logger)
	services := &Services{
		Auth:          authservice.New(db, maker, logger),
		Wallet:        walletservice.New(db, gateway, logger),
		Subscription:  subscriptionservice.New(db, notificationService, logger),
		Expert:        expertservice.New(db, cacheRedis, logger),
		Rating:        ratingservice.New(db, cacheRedis, logger),
		Post:          postservice.New(db, logger),
		Chat:          chatservice.New(db, notificationService, logger),
		Notification:  notificationService,
		ExpertRequest: expertrequestservice.New(db, notificationService, logger),
		Admin:         adminservice.New(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, maker, db, services)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		mq:     mq,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if a.mq != nil {
			_ = a.mq.Close()
		}
		return err
	}
}
