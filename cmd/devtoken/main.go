// Command devtoken mints a session token for local testing against a
// server that shares the same identity.token_secret.
package main

import (
	"alcyxob/learnhub/internal/config"
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"flag"
	"fmt"
	"log"
)

func main() {
	subject := flag.String("sub", "", "external user id (token subject)")
	role := flag.String("role", string(domain.RoleStudent), "role claim: student, teacher or admin")
	configPath := flag.String("config", ".", "directory holding config.yaml or .env")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-sub is required")
	}
	r := domain.Role(*role)
	if !r.Valid() {
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if cfg.Identity.TokenSecret == "" {
		log.Fatal("identity.token_secret is not set")
	}

	token, err := identity.NewIssuer(cfg.Identity.TokenSecret, cfg.Identity.Issuer, cfg.Identity.DevTokenTTL).Issue(*subject, r)
	if err != nil {
		log.Fatalf("could not issue token: %v", err)
	}
	fmt.Println(token)
}
