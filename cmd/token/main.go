// Command token mints a bearer token for local development and manual testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"carshare/internal/auth"
	"carshare/internal/config"
	"carshare/internal/domain"
)

func main() {
	userID := flag.String("user", "", "user id placed in the token subject")
	roles := flag.String("roles", domain.RoleCustomer, "comma separated roles")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-roles CUSTOMER,MANAGER]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	token, err := tokens.GenerateAccessToken(*userID, strings.Split(*roles, ","))
	if err != nil {
		logrus.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
