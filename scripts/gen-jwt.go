// ABOUTME: Generates signed identity assertions for testing the Bearer auth path
// ABOUTME: Mints tokens with the same codec the server uses, signed by JWT_SECRET

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/artspark/gallery-bff/middleware"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <user-id> <username> [role,role...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads the signing secret from JWT_SECRET and TTL from ASSERTION_TTL (default 1h)\n")
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	userID, err := strconv.Atoi(os.Args[1])
	if err != nil || userID <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid user id: %s\n", os.Args[1])
		os.Exit(1)
	}

	roles := []string{"ROLE_USER"}
	if len(os.Args) > 3 {
		roles = strings.Split(os.Args[3], ",")
	}

	ttl := time.Hour
	if raw := os.Getenv("ASSERTION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			ttl = d
		}
	}

	codec := middleware.NewIdentityCodec(secret, ttl)
	token, err := codec.Mint(&middleware.UserClaims{
		UserID:   userID,
		Username: os.Args[2],
		Roles:    roles,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign assertion: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(token)
}
