package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/config"
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/fsdevblog/groph-ledger/internal/service/psswd"
	"github.com/fsdevblog/groph-ledger/internal/transport/api"
	"github.com/fsdevblog/groph-ledger/internal/transport/notify"
	"github.com/fsdevblog/groph-ledger/internal/transport/outbox"
	"github.com/fsdevblog/groph-ledger/internal/transport/webhook"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	webhookTimeout  = 10 * time.Second
	chatTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	metricsRoute    = "/metrics"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Services connects to the database and builds the service layer.
func (a *App) Services(ctx context.Context) (*service.AppServices, *pgxpool.Pool, error) {
	conn, connErr := pgrepo.Connect(ctx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return nil, nil, fmt.Errorf("app services: %s", connErr.Error())
	}

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("app services: %s", uowErr.Error())
	}
	unitOfWork.SetLockTimeout(a.Config.LockTimeout)

	services, sErr := service.Factory(service.FactoryArgs{
		UOW:           unitOfWork,
		Logger:        a.Logger,
		Hasher:        psswd.PasswordHash{},
		JWTSecret:     []byte(a.Config.JWTSecret),
		DebitPolicy:   domain.DebitPolicy(a.Config.DebitPolicy),
		NotifyTimeout: a.Config.NotifyTimeout,
	})
	if sErr != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("app services: %s", sErr.Error())
	}
	return services, conn, nil
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %s", a.Config)
	services, conn, err := a.Services(notifyCtx)
	if err != nil {
		return fmt.Errorf("app run: %w", err)
	}
	defer conn.Close()

	dispatcher := a.newDispatcher(services.Outbox)
	services.SetDispatcher(dispatcher)

	router, routerErr := api.New(api.RouterArgs{
		Logger:                a.Logger,
		LedgerService:         services.Ledger,
		OrderService:          services.Orders,
		FulfillmentService:    services.Fulfillment,
		BalanceRequestService: services.BalanceRequests,
		CouponService:         services.Coupons,
		OutboxService:         services.Outbox,
		AuditService:          services.Audit,
		JWTSecretKey:          []byte(a.Config.JWTSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}
	router.GET(metricsRoute, gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: api.DefaultServiceTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if runErr := server.ListenAndServe(); runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
			errChan <- runErr
		}
	}()

	go dispatcher.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(notifyCtx), shutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			a.Logger.WithError(shutdownErr).Error("http server shutdown")
		}
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// newDispatcher picks real senders for configured channels and log fallbacks for the rest.
func (a *App) newDispatcher(store outbox.Store) *outbox.Dispatcher {
	var mailer outbox.Mailer = notify.NewLogMailer(a.Logger)
	if a.Config.SMTPHost != "" {
		mailer = notify.NewMailer(notify.SMTPConfig{
			Host:     a.Config.SMTPHost,
			Port:     a.Config.SMTPPort,
			Username: a.Config.SMTPUsername,
			Password: a.Config.SMTPPassword,
			From:     a.Config.SMTPFrom,
		})
	}

	var chat outbox.ChatNotifier = notify.NewLogNotifier(a.Logger)
	if a.Config.ChatWebhookURL != "" {
		chat = notify.NewChatNotifier(a.Config.ChatWebhookURL, chatTimeout)
	}

	endpoints := make(map[string]webhook.Endpoint, len(a.Config.WebhookEndpoints))
	for name, u := range a.Config.WebhookEndpoints {
		endpoints[name] = webhook.Endpoint{URL: u, Secret: a.Config.WebhookSecret}
	}

	return outbox.New(store, webhook.New(webhookTimeout), mailer, chat, endpoints, a.Logger).
		SetWorkers(a.Config.OutboxWorkers).
		SetBatchSize(a.Config.OutboxBatchSize).
		SetMaxAttempts(a.Config.OutboxMaxAttempts).
		SetRateLimit(a.Config.OutboxRateLimit)
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.BalanceTransactionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewBalanceTransactionRepository(dbtx)
		},
		repoargs.BalanceRequestRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewBalanceRequestRepository(dbtx)
		},
		repoargs.CouponRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCouponRepository(dbtx)
		},
		repoargs.CouponUsageRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCouponUsageRepository(dbtx)
		},
		repoargs.ServiceAccountRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewServiceAccountRepository(dbtx)
		},
		repoargs.OutboxRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOutboxRepository(dbtx)
		},
		repoargs.AuditRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewAuditRepository(dbtx)
		},
	}
	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}
	return unitOfWork, nil
}
