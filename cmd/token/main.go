// Command token prints a bearer token for calling the gRPC API during development.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vigipay/vigipay-backend/internal/auth"
	"github.com/vigipay/vigipay-backend/internal/config"
	"github.com/vigipay/vigipay-backend/internal/usecase/seeder"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./config.yaml)")
	user := flag.String("user", seeder.DEMO_USER_AN.String(), "user ID to issue the token for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	userID, err := uuid.Parse(*user)
	if err != nil {
		logrus.Fatalf("Invalid user ID %q: %v", *user, err)
	}

	token, err := auth.GenerateToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, userID, "", *ttl)
	if err != nil {
		logrus.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
