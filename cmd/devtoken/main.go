// Command devtoken mints an HS256 access token for local development.
//
//	go run ./cmd/devtoken -username alice
//
// The secret is read from JWT_SECRET_KEY (a .env file is honoured).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"groupregistration/internal/adapters/auth"
)

func main() {
	subject := flag.String("sub", "", "token subject (defaults to the username)")
	username := flag.String("username", "", "username claim")
	ttl := flag.Duration("ttl", 30*time.Minute, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}
	if *username == "" && *subject == "" {
		log.Fatal("one of -username or -sub is required")
	}
	if *subject == "" {
		*subject = *username
	}

	token, err := auth.NewJWTIssuer(secret).Issue(*subject, *username, *ttl)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Println(token)
}
