// Command sandbox serves an in-memory NeuroFit API for local development of
// the CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/neurofit/internal/sandbox"
)

func main() {
	addr := flag.String("a", ":8000", "listen address")
	seed := flag.String("u", "", "seed account as username:password")
	ttl := flag.Duration("ttl", sandbox.DefaultAccessTTL, "access token lifetime")
	rotate := flag.Bool("rotate", false, "rotate refresh tokens on renewal")
	flag.Parse()

	if err := run(*addr, *seed, *ttl, *rotate); err != nil {
		log.Fatalf("Error running sandbox: %s\n", err)
	}
	log.Printf("Sandbox stopped\n")
}

func run(addr, seed string, ttl time.Duration, rotate bool) error {
	opts := []sandbox.Option{sandbox.WithAccessTTL(ttl)}
	if rotate {
		opts = append(opts, sandbox.WithRefreshRotation())
	}
	sb := sandbox.New(opts...)

	if seed != "" {
		username, password, ok := strings.Cut(seed, ":")
		if !ok {
			return fmt.Errorf("seed account must look like username:password")
		}
		if _, err := sb.AddUser(username, username+"@example.com", password); err != nil {
			return fmt.Errorf("seed account: %w", err)
		}
		log.Printf("Seeded account %q\n", username)
	}

	figure.NewFigure("NeuroFit sandbox", "cybermedium", true).Print()
	fmt.Println()

	server := &http.Server{Addr: addr, Handler: sb.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Sandbox listening on %s, API under /api\n", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
