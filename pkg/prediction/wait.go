package prediction

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

var errMissingHost = errors.New("endpoint has no host")

// WaitForEndpoint blocks until something accepts TCP connections on the endpoint's
// host, backing off exponentially for at most maxElapsed. It is meant for startup
// ordering only; prediction requests themselves are never retried.
func WaitForEndpoint(ctx context.Context, endpoint string, maxElapsed time.Duration) error {
	address, err := dialAddress(endpoint)
	if err != nil {
		return err
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = 250 * time.Millisecond
	retryBackoff.MaxInterval = 5 * time.Second
	retryBackoff.MaxElapsedTime = maxElapsed

	dialer := &net.Dialer{Timeout: 2 * time.Second}

	operation := func() error {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			log.Debug().Err(err).Str("address", address).Msg("Prediction service not reachable yet")
			return err
		}

		return conn.Close()
	}

	if err := backoff.Retry(operation, backoff.WithContext(retryBackoff, ctx)); err != nil {
		return err
	}

	log.Info().Str("address", address).Msg("Prediction service is reachable")

	return nil
}

func dialAddress(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if parsed.Hostname() == "" {
		return "", &url.Error{Op: "parse", URL: endpoint, Err: errMissingHost}
	}

	port := parsed.Port()
	if port == "" {
		port = "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
	}

	return net.JoinHostPort(parsed.Hostname(), port), nil
}
