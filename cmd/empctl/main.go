// Command empctl is a terminal front end for the employee directory API.
//
//	empctl [global flags] list [-search term] [-sort field] [-page n]
//	empctl [global flags] create -name .. -email .. -mobile .. [-designation HR] [-gender M] [-course MCA] [-image file]
//	empctl [global flags] edit <id> [same flags as create]
//	empctl [global flags] delete [-yes] <id>
//	empctl [global flags] toggle <id>
//	empctl [global flags] export [-o employees.xlsx]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"employee-directory/internal/client"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup finishes before exit.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	global := flag.NewFlagSet("empctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	baseURL := global.String("url", envOr("EMPCTL_URL", "http://localhost:5000"), "backend origin")
	email := global.String("email", os.Getenv("EMPCTL_EMAIL"), "admin email")
	password := global.String("password", os.Getenv("EMPCTL_PASSWORD"), "admin password")
	verbose := global.Bool("v", false, "debug logging")
	if err := global.Parse(argv); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	args := global.Args()
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: empctl [flags] list|create|edit|delete|toggle|export")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := client.New(*baseURL)
	if err != nil {
		return report(stderr, err)
	}
	if _, err := api.Login(ctx, *email, *password); err != nil {
		return report(stderr, fmt.Errorf("login: %w", err))
	}
	defer func() {
		if err := api.Logout(context.Background()); err != nil {
			logger.Debug("logout failed", "error", err)
		}
	}()

	app := &app{api: api, log: logger, in: bufio.NewReader(stdin), out: stdout}
	if err := app.run(ctx, args[0], args[1:]); err != nil {
		return report(stderr, err)
	}
	return 0
}

// report prints err and returns the failure exit code.
func report(w io.Writer, err error) int {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		fmt.Fprintf(w, "error: %s (HTTP %d)\n", reqErr.Message, reqErr.StatusCode)
	} else {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return 1
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
