// Command devtoken mints an access token for local development.  It
// creates the user row on first use, so the printed token is accepted by
// every authenticated endpoint of a server sharing the same JWT_SECRET.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/pflag"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

func main() {
	email := pflag.StringP("email", "e", "", "user email (required)")
	first := pflag.String("first-name", "", "first name for a new user")
	last := pflag.String("last-name", "", "last name for a new user")
	ttl := pflag.Int("ttl", 0, "token lifetime in minutes (default ACCESS_TOKEN_TTL_MIN)")
	pflag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "devtoken: --email is required")
		pflag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if *ttl <= 0 {
		*ttl = cfg.AccessTTLMin
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	u, err := users.GetByEmail(ctx, *email)
	if errors.Is(err, repository.ErrNotFound) {
		u = &model.User{Email: *email, FirstName: *first, LastName: *last}
		err = users.Create(ctx, u)
		if err == nil {
			log.Infof("created user %s <%s>", u.ID, u.Email)
		}
	}
	if err != nil {
		log.Fatalf("user: %v", err)
	}

	tok, err := utils.NewAccessToken(cfg.JWTSecret, u.ID, *ttl)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Printf("user_id=%s\nexpires=%s\n%s\n", u.ID, tok.Exp.Format(time.RFC3339), tok.Token)
}
