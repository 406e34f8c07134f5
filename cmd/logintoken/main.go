// Command logintoken mints a login token for an existing account. It is the
// bootstrap path for the first administrator, before any mail is configured.
//
//	logintoken -email admin@example.com [-link]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/99minutos/admin-api/internal/core/service"
	"github.com/99minutos/admin-api/internal/infrastructure/db/postgres"
	"github.com/99minutos/admin-api/internal/infrastructure/mail"
	"github.com/99minutos/admin-api/internal/pkg/config"
	"github.com/99minutos/admin-api/internal/pkg/token"
	"github.com/99minutos/admin-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email of the account to log in as")
	asLink := flag.Bool("link", false, "print a login link instead of the raw token")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: 1})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to store")
	}
	defer db.Close()

	codec, err := token.NewCodec(cfg.Token.Secret, token.WithIssuer(cfg.Token.Issuer), token.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("token codec")
	}

	auth := service.NewAuthService(postgres.NewUserRepository(db), codec, service.TokenTTLs{
		Login:   cfg.Token.LoginTTL,
		Access:  cfg.Token.AccessTTL,
		Refresh: cfg.Token.RefreshTTL,
	}, log)

	raw, err := auth.IssueLoginToken(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("issue login token")
	}

	if *asLink {
		link, err := mail.LoginLink(cfg.SMTP.LoginLinkURL, raw)
		if err != nil {
			log.Fatal().Err(err).Msg("build login link")
		}
		fmt.Println(link)
		return
	}
	fmt.Println(raw)
}
