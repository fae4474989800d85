package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

// Prints a bcrypt hash for seeding users by hand.
// Usage: go run scripts/generate_password.go <password> [cost]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password> [cost]")
	}

	password := os.Args[1]
	cost := 12
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("Invalid cost %q", os.Args[2])
		}
		cost = n
	}

	passwords := auth.NewPasswordManager(cost)
	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash: ", err)
	}

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed: ", err)
	}

	fmt.Printf("Hash: %s\n", hash)
}
