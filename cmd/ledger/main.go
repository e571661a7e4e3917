package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/app"
	"github.com/fsdevblog/groph-ledger/internal/config"
	"github.com/fsdevblog/groph-ledger/internal/logger"
	"github.com/fsdevblog/groph-ledger/internal/service"
)

func main() {
	issueToken := flag.Int64("issue-token", 0, "Print a bearer token for the given user id and exit")
	tokenTTL := flag.Duration("token-ttl", service.JWTTokenExpire, "Lifetime of a token printed by -issue-token")

	conf := config.MustLoadConfig()
	l := logger.New(os.Stdout)
	a := app.New(conf, l)

	if *issueToken > 0 {
		if err := printToken(a, *issueToken, *tokenTTL); err != nil {
			l.WithError(err).Error("issue token")
			os.Exit(1)
		}
		return
	}

	if err := a.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		panic(err)
	}
}

func printToken(a *app.App, userID int64, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	defer cancel()

	services, conn, err := a.Services(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	token, err := services.Users.IssueToken(ctx, userID, ttl)
	if err != nil {
		return fmt.Errorf("print token: %w", err)
	}
	fmt.Println(token) //nolint:forbidigo
	return nil
}
