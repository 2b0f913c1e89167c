package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookcatalog/internal/auth"

	"github.com/joho/godotenv"
)

// Mints a bearer token for the mutating API routes. The secret comes
// from JWT_SECRET, same as cmd/api.
func main() {
	var (
		subject = flag.String("sub", "ops-cli", "Token subject")
		ttl     = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	)
	flag.Parse()

	_ = godotenv.Load(".env.local")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing required environment variable: JWT_SECRET")
	}

	token, err := auth.GenerateToken(secret, *subject, *ttl)
	if err != nil {
		log.Fatalf("cannot generate token: %v", err)
	}
	fmt.Println(token)
}
