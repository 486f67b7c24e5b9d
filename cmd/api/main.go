package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-blog-nosql/internal/application/notification"
	"github.com/go-blog-nosql/internal/config"
	"github.com/go-blog-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-blog-nosql/internal/infrastructure/jwt"
	redisinfra "github.com/go-blog-nosql/internal/infrastructure/redis"
	s3infra "github.com/go-blog-nosql/internal/infrastructure/s3"
	"github.com/go-blog-nosql/internal/infrastructure/smtp"
	"github.com/go-blog-nosql/internal/infrastructure/sns"
	"github.com/go-blog-nosql/internal/pkg/bloom"
	transporthttp "github.com/go-blog-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// A missing secret is fatal: no token could ever be issued or checked.
	tokens, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.Profiles)

	emailIndex := bloom.New(cfg.BloomBits, cfg.BloomHashes)
	if cfg.BloomWarmup {
		n, err := userRepo.ScanEmails(context.Background(), emailIndex.Add)
		if err != nil {
			slog.Warn("email index warm-up incomplete", "loaded", n, "err", err)
		} else {
			log.Printf("Email index loaded %d addresses (est. false positive rate %.4f)",
				n, emailIndex.EstimatedFalsePositiveRate(n))
		}
	}

	s3Client, err := s3infra.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("s3 client: %v", err)
	}

	sender, err := newMailSender(cfg)
	if err != nil {
		log.Fatalf("mail transport: %v", err)
	}
	dispatcher := notification.NewDispatcher(sender, notification.Options{
		Workers:   cfg.MailWorkers,
		QueueSize: cfg.MailQueueSize,
		MaxTries:  uint(cfg.MailMaxRetries),
	})
	dispatcher.Start()

	deps := &transporthttp.Deps{
		UserRepo:    userRepo,
		ProfileRepo: dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		OTPRepo:     dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs, cfg.DynamoTables.Users),
		BlogRepo:    dynamo.NewBlogRepo(dynamoClient, cfg.DynamoTables.Blogs),
		Images:      s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PublicBaseURL),
		EmailIndex:  emailIndex,
		Mail:        dispatcher,
		Tokens:      tokens,
	}

	// OTP attempt limiter (optional; verification is unthrottled without Redis).
	if cfg.RedisAddr != "" {
		client, err := redisinfra.NewClient(context.Background(), cfg)
		if err != nil {
			log.Printf("WARN: OTP attempt limiter not available: %v", err)
		} else {
			defer client.Close()
			deps.Limiter = redisinfra.NewAttemptLimiter(client, cfg.OTPMaxAttempts, cfg.OTPAttemptWindow)
		}
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Printf("mail queue not drained: %v", err)
	}
	log.Println("Server stopped")
}

func newMailSender(cfg *config.Config) (notification.Sender, error) {
	switch cfg.MailTransport {
	case "smtp":
		return smtp.NewMailer(cfg), nil
	case "sns":
		return sns.NewPublisher(cfg)
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}
