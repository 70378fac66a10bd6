package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/logger"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/service"
	"github.com/google/uuid"
	"golang.org/x/term"
)

func main() {
	var (
		userFlag string
		name     string
	)
	flag.StringVar(&userFlag, "user", "", "User UUID (prompted when empty; \"new\" generates one)")
	flag.StringVar(&name, "name", "", "Display name carried in the token")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── CLI Input ─────────────────────────────────────────────────────
	if userFlag == "" {
		fmt.Fprint(os.Stderr, "Enter User ID (blank for a new one): ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		userFlag = strings.TrimSpace(line)
	}

	userID := uuid.New()
	if userFlag != "" && userFlag != "new" {
		parsed, err := uuid.Parse(userFlag)
		if err != nil || parsed == uuid.Nil {
			fmt.Fprintln(os.Stderr, "Error: User ID must be a non-nil UUID")
			os.Exit(1)
		}
		userID = parsed
	}

	// Secret
	if os.Getenv("JWT_SECRET") == "" {
		fmt.Fprint(os.Stderr, "JWT_SECRET is not set. Enter signing secret: ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error reading secret")
			os.Exit(1)
		}
		if len(secret) < 16 {
			fmt.Fprintln(os.Stderr, "Error: secret must be at least 16 characters")
			os.Exit(1)
		}
		cfg.JWTSecret = string(secret)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	token, err := service.NewAuthService(cfg).IssueToken(userID, name)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	fmt.Fprintf(os.Stderr, "Issued token for user %s (expires in %s)\n", userID, cfg.JWTExpiry)
	fmt.Println(token)
}
