package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/vigipay/vigipay-backend/internal/adapter/events"
	"github.com/vigipay/vigipay-backend/internal/adapter/events/kafka"
	fraudadapter "github.com/vigipay/vigipay-backend/internal/adapter/fraud"
	grpcadapter "github.com/vigipay/vigipay-backend/internal/adapter/grpc"
	"github.com/vigipay/vigipay-backend/internal/adapter/repository/memory"
	"github.com/vigipay/vigipay-backend/internal/adapter/repository/postgres"
	"github.com/vigipay/vigipay-backend/internal/config"
	"github.com/vigipay/vigipay-backend/internal/domain"
	"github.com/vigipay/vigipay-backend/internal/logging"
	"github.com/vigipay/vigipay-backend/internal/usecase/account"
	"github.com/vigipay/vigipay-backend/internal/usecase/accountnumber"
	"github.com/vigipay/vigipay-backend/internal/usecase/fraud"
	"github.com/vigipay/vigipay-backend/internal/usecase/savings"
	"github.com/vigipay/vigipay-backend/internal/usecase/seeder"
	"github.com/vigipay/vigipay-backend/internal/usecase/transfer"
)

// ledger bundles the storage-backed collaborators of the services
type ledger struct {
	accounts     domain.AccountRepository
	transfers    domain.TransferRepository
	transactions domain.TransactionRepository
	goals        domain.SavingsGoalRepository
	users        seeder.UserRegistrar
	store        domain.LedgerStore
	close        func() error
}

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./config.yaml)")
	seed := flag.Bool("seed", true, "create demo users and accounts on startup")
	flag.Parse()

	// 1. Configuration and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	ctx := context.Background()

	// 2. Setup storage
	store, err := openLedger(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open ledger store")
	}
	defer store.close()

	feePolicy, err := cfg.FeePolicy()
	if err != nil {
		logger.WithError(err).Fatal("Invalid fee schedule")
	}

	// 3. Fraud gate, whenever a scorer endpoint is configured.
	// Without one, requests asking for warn or block fail as unavailable.
	fraudPolicy, _ := fraud.ParsePolicy(cfg.Fraud.Policy)
	var gate transfer.FraudGate
	if cfg.Fraud.Endpoint != "" {
		failMode, _ := fraud.ParseFailMode(cfg.Fraud.FailMode)
		scorer := fraudadapter.NewHTTPScorer(cfg.Fraud.Endpoint, &http.Client{})
		gate = fraud.NewGate(scorer, store.accounts, store.users, cfg.Fraud.Timeout, failMode, logger)
		logger.WithFields(logrus.Fields{
			"policy":    fraudPolicy,
			"fail_mode": failMode,
			"endpoint":  cfg.Fraud.Endpoint,
		}).Info("Fraud gate enabled")
	}

	// 4. Event publisher
	var publisher domain.EventPublisher = events.LogPublisher{Logger: logger}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// 5. Initialize Services (Use Cases)
	allocator := accountnumber.NewAllocator(cfg.Accounts.NumberLength, cfg.Accounts.AllocationAttempts)
	accountService := account.NewAccountService(
		store.accounts, store.users, store.store, allocator, cfg.Accounts.StartingBalance, logger,
	)
	transferService := transfer.NewTransferService(
		store.accounts,
		store.transfers,
		store.transactions,
		store.users,
		store.store,
		feePolicy,
		gate,
		fraudPolicy,
		publisher,
		logger,
	)
	transferService.InternalBankCode = cfg.Transfers.InternalBankCode
	savingsService := savings.NewSavingsService(store.accounts, store.goals, store.store, logger)

	if *seed {
		demoSeeder := seeder.NewDemoSeeder(
			store.users, store.accounts, accountService, cfg.Accounts.StartingBalance, cfg.Seed.DemoAccountNumber, logger,
		)
		if err := demoSeeder.Seed(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to seed demo data")
		}
		logger.Info("Demo data seeded successfully")
	}

	// 6. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		),
	)

	grpcAdapter := grpcadapter.NewServer(accountService, transferService, savingsService, logger)
	grpcadapter.RegisterBankServiceServer(grpcServer, grpcAdapter)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.WithError(err).Fatalf("Failed to listen on %s", cfg.Server.GRPCAddr)
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("gRPC server listening on %s", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.WithError(err).Fatal("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, cfg.Server.ShutdownTimeout, logger)
}

// openLedger builds repositories for the configured storage driver
func openLedger(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*ledger, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("Using in-memory ledger store; data is lost on restart")
		store := memory.NewStore()
		return &ledger{
			accounts:     memory.NewAccountRepository(store),
			transfers:    memory.NewTransferRepository(store),
			transactions: memory.NewTransactionRepository(store),
			goals:        memory.NewSavingsGoalRepository(store),
			users:        store,
			store:        store,
			close:        func() error { return nil },
		}, nil
	}

	db, err := postgres.NewDB(cfg.Database.ConnString(), postgres.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database schema migrated")

	return &ledger{
		accounts:     postgres.NewAccountRepository(db),
		transfers:    postgres.NewTransferRepository(db),
		transactions: postgres.NewTransactionRepository(db),
		goals:        postgres.NewSavingsGoalRepository(db),
		users:        postgres.NewUserDirectory(db),
		store:        postgres.NewStore(db),
		close:        db.Close,
	}, nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server.
// In-flight calls get timeout to finish before the server is stopped hard.
func waitForShutdown(grpcServer *grpclib.Server, timeout time.Duration, logger logrus.FieldLogger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Infof("Received signal: %v. Shutting down gracefully...", sig)

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(timeout):
		logger.Warn("Graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}
	logger.Info("gRPC server stopped")
}
