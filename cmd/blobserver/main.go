// Command blobserver runs the development blob service.
//
//	blobserver --listen :8080 --redis localhost:6379 --credentials '*TESTGW1:secret'
//
// Without --redis blobs are kept in memory and lost on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/blobstore"
	"github.com/opd-ai/msgcrypt/crypto"
)

type serverFlags struct {
	listen      string
	redisAddr   string
	ttl         time.Duration
	credentials []string
	logLevel    string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var f serverFlags
	cmd := &cobra.Command{
		Use:          "blobserver",
		Short:        "Serve encrypted blobs over the gateway blob API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.listen, "listen", ":8080", "listen address")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "redis address; empty keeps blobs in memory")
	cmd.Flags().DurationVar(&f.ttl, "ttl", blobstore.DefaultTTL, "blob lifetime in redis")
	cmd.Flags().StringSliceVar(&f.credentials, "credentials", nil, "accepted IDENTITY:SECRET pairs; empty disables authentication")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level")
	return cmd
}

func parseCredentials(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	creds := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		id, secret, ok := strings.Cut(pair, ":")
		if !ok || secret == "" {
			return nil, fmt.Errorf("credentials %q: want IDENTITY:SECRET", pair)
		}
		if _, err := crypto.ParseIdentity(id); err != nil {
			return nil, err
		}
		creds[id] = secret
	}
	return creds, nil
}

func serve(ctx context.Context, f serverFlags) error {
	level, err := logrus.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	creds, err := parseCredentials(f.credentials)
	if err != nil {
		return err
	}

	var store blobstore.Store = blobstore.NewMemoryStore()
	if f.redisAddr != "" {
		rs := blobstore.NewRedisStore(redis.NewClient(&redis.Options{Addr: f.redisAddr}), f.ttl)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			return fmt.Errorf("redis %s: %w", f.redisAddr, err)
		}
		store = rs
	}

	srv := &http.Server{
		Addr:              f.listen,
		Handler:           blobstore.NewServer(store, creds).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"function": "serve",
			"listen":   f.listen,
			"redis":    f.redisAddr,
			"auth":     creds != nil,
		}).Info("Blob server listening")
		errCh <- srv.ListenAndServe()
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-done:
	}

	logrus.WithField("function", "serve").Info("Shutting down blob server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
