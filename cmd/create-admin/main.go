package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/eventhub/eventhub-backend/internal/config"
	"github.com/eventhub/eventhub-backend/internal/database"
	"github.com/eventhub/eventhub-backend/internal/logger"
	"github.com/eventhub/eventhub-backend/internal/model"
	"github.com/eventhub/eventhub-backend/internal/repository"
	"github.com/eventhub/eventhub-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	var printToken bool
	flag.BoolVar(&printToken, "token", false, "Print a bearer token for the new admin")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if password == "" {
		fmt.Println("Error: Password is required")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hash, err := hasher.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Printf("Error: an admin with email %s already exists\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Name, admin.Email, admin.ID)

	if printToken {
		tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
		token, err := tokens.IssueToken(model.PrincipalAdmin, admin.ID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Printf("Token: %s\n", token)
	}
}
