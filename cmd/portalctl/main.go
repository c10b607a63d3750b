// Command portalctl is a terminal client for the cleaning portal. It keeps
// the signed-in session in a token file and checks the caller's role before
// running admin and employee commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/client"
	"github.com/brightnest/cleaning-portal/internal/core/session"
	"github.com/brightnest/cleaning-portal/internal/infrastructure/config"
	"github.com/brightnest/cleaning-portal/pkg/logger"
)

const usage = `usage: portalctl <command> [flags]

account:
  signup     -email -password -username -phone
  signin     -email -password
  signout
  whoami

customer:
  services
  book       -service [-location] [-notes] -date YYYY-MM-DD -time HH:MM -evc NUMBER
  retry      -wizard ID [-evc NUMBER]
  bookings
  cancel     -id BOOKING

admin:
  admin stats
  admin bookings   [-status] [-page] [-limit]
  admin status     -id BOOKING -status STATUS
  admin assign     -id BOOKING [-employee ID]
  admin events     -id BOOKING
  admin orphans
  admin employees
  admin add-employee    -email -password -username [-phone]
  admin edit-employee   -id ID [-username] [-phone]
  admin remove-employee -id ID

employee:
  tasks
  task-status -id BOOKING -status STATUS
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := logger.Init(logger.Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Pretty:  true,
		Service: "portalctl",
		Output:  stderr,
	})
	if os.Getenv("LOG_LEVEL") == "" {
		log = log.Level(zerolog.WarnLevel)
	}

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = client.DefaultTokenPath()
	}
	api := client.New(client.Config{BaseURL: cfg.APIURL, TokenFile: tokenFile, Timeout: cfg.Timeout}, log)
	store := client.NewSessionStore(api)
	roles := client.NewRoleResolver(api)

	ctrl := session.NewController(store, roles, log)
	defer ctrl.Close()
	if err := ctrl.Initialize(ctx); err != nil {
		fmt.Fprintln(stderr, "could not read the stored session:", err)
	}

	app := &app{
		api:   api,
		store: store,
		roles: roles,
		ctrl:  ctrl,
		out:   stdout,
	}
	if err := app.dispatch(ctx, args); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, ue.Error())
			fmt.Fprint(stderr, usage)
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
