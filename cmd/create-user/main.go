package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/database"
	"github.com/stemsi/stuteach-backend/internal/logger"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stemsi/stuteach-backend/internal/repository"
	"github.com/stemsi/stuteach-backend/internal/service"
	"github.com/stemsi/stuteach-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.StoreDriver != config.StoreDriverPostgres {
		log.Fatal().Str("store", cfg.StoreDriver).Msg("create-user needs STORE_DRIVER=postgres")
	}

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	users := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, users, nil)
	userService := service.NewUserService(users, authService, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	fmt.Print("Enter Role (teacher/student, default teacher): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(roleStr)
	if roleStr == "" {
		roleStr = model.RoleTeacher.String()
	}
	role, ok := model.ParseRole(roleStr)
	if !ok {
		fmt.Println("Error: Role must be teacher or student")
		return
	}

	req := model.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: string(bytePassword),
		Role:     role,
	}
	if fields := validator.Struct(&req); fields != nil {
		for field, msg := range fields {
			fmt.Printf("Error: %s: %s\n", field, msg)
		}
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	res, err := userService.Register(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Println("Error: Email is already registered")
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %s\n", res.User.Role, res.User.Name, res.User.Email, res.User.ID)
}
