package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/PhucVu3008/koola-admin/config"
	"github.com/PhucVu3008/koola-admin/internal/admin"
	"github.com/PhucVu3008/koola-admin/internal/auth"
	"github.com/PhucVu3008/koola-admin/internal/keepalive"
	"github.com/PhucVu3008/koola-admin/internal/koola"
	"github.com/PhucVu3008/koola-admin/internal/store"
)

const usage = `usage: koola-admin <command>

commands:
  login      log in with email and password
  logout     revoke and clear the stored session
  whoami     show the logged-in user
  status     show session state and token expiry
  leads      list contact-form leads
  keepalive  run the token keep-alive service until interrupted`

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	tokenStore, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open token store")
	}
	defer cleanup()

	manager := auth.NewManager(tokenStore, auth.ManagerOpts{BaseURL: cfg.APIBaseURL})
	api := koola.NewClient(koola.ClientOpts{
		BaseURL: cfg.APIBaseURL,
		Store:   tokenStore,
		Session: manager,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		},
	})
	adminService := admin.NewService(api)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, manager)
	case "logout":
		err = manager.Logout(ctx)
	case "whoami":
		err = runWhoami(manager)
	case "status":
		err = runStatus(manager, tokenStore)
	case "leads":
		err = runLeads(ctx, adminService)
	case "keepalive":
		err = runKeepalive(ctx, manager, tokenStore)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func openStore(cfg *config.Config) (store.TokenStore, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return store.NewRedisStore(client), func() { client.Close() }, nil
	}

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath, store.DeriveKey(cfg.TokenKey))
	if err != nil {
		return nil, nil, err
	}
	return sqliteStore, func() { sqliteStore.Close() }, nil
}

func runLogin(ctx context.Context, manager *auth.Manager) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	fmt.Print("password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	session, err := manager.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		var rejected *auth.LoginRejectedError
		if errors.As(err, &rejected) {
			return fmt.Errorf("login rejected: %s", rejected.Message)
		}
		return err
	}

	fmt.Printf("logged in as %s\n", session.Profile.Email)
	return nil
}

func runWhoami(manager *auth.Manager) error {
	profile := manager.Profile()
	if profile == nil {
		return errors.New("not logged in")
	}

	fmt.Printf("%s <%s>\n", profile.FullName, profile.Email)
	for _, role := range profile.Roles {
		fmt.Printf("  role: %s\n", role.Name)
	}
	return nil
}

func runStatus(manager *auth.Manager, tokenStore store.TokenStore) error {
	state := manager.State()
	fmt.Printf("session: %s\n", state)

	session, err := tokenStore.Get()
	if err != nil || session == nil {
		return err
	}

	if claims, err := auth.DecodeClaims(session.AccessToken); err == nil {
		fmt.Printf("access token expires: %s\n", auth.ExpiresAt(claims).Local())
	}
	if claims, err := auth.DecodeClaims(session.RefreshToken); err == nil {
		fmt.Printf("refresh token expires: %s\n", auth.ExpiresAt(claims).Local())
	}
	return nil
}

func runLeads(ctx context.Context, adminService *admin.Service) error {
	leads, err := adminService.ListLeads(ctx, 50, 0)
	if err != nil {
		return err
	}

	if len(leads) == 0 {
		fmt.Println("no leads")
		return nil
	}

	for _, lead := range leads {
		fmt.Printf("#%d %s <%s> %s\n  %s\n", lead.ID, lead.Name, lead.Email,
			lead.CreatedAt.Local().Format("2006-01-02 15:04"), lead.Message)
	}
	return nil
}

func runKeepalive(ctx context.Context, manager *auth.Manager, tokenStore store.TokenStore) error {
	g, ctx := errgroup.WithContext(ctx)

	service := keepalive.NewService(manager, tokenStore)
	g.Go(func() error {
		return service.Run(ctx)
	})

	return g.Wait()
}
