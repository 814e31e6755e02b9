package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcpp-dev/mcpp-core/auth"
	"github.com/mcpp-dev/mcpp-core/cache"
	"github.com/mcpp-dev/mcpp-core/consent"
	"github.com/mcpp-dev/mcpp-core/datacache"
	"github.com/mcpp-dev/mcpp-core/dispatcher"
	"github.com/mcpp-dev/mcpp-core/health"
	"github.com/mcpp-dev/mcpp-core/internal/config"
	"github.com/mcpp-dev/mcpp-core/observe"
	"github.com/mcpp-dev/mcpp-core/placeholder"
	"github.com/mcpp-dev/mcpp-core/policy"
	"github.com/mcpp-dev/mcpp-core/reference"
	"github.com/mcpp-dev/mcpp-core/resilience"
	"github.com/mcpp-dev/mcpp-core/secret"
	"github.com/mcpp-dev/mcpp-core/toolexec"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCPP core JSON-RPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "mcppd.yaml", "path to the configuration file")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("mcppd: %w", err)
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "mcppd",
		Version:     "dev",
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		return fmt.Errorf("mcppd: starting observability: %w", err)
	}
	defer obs.Shutdown(context.Background())

	obsMiddleware, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("mcppd: building observability middleware: %w", err)
	}

	dataStore := datacache.NewMemoryStore()

	upstream, err := toolexec.NewHTTPUpstream(loaded.UpstreamBaseURL, nil).
		WithAuthHeader(ctx, secret.NewResolver(true), loaded.UpstreamAuthHeader)
	if err != nil {
		return fmt.Errorf("mcppd: %w", err)
	}
	resilienceExec := resilience.NewExecutor(
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		})),
		resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: 20,
		})),
		resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  50,
			Burst: 10,
		})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
		})),
		resilience.WithTimeout(30*time.Second),
	)
	cacheMW := cache.NewCacheMiddleware(
		cache.NewMemoryCache(cache.Policy{DefaultTTL: 5 * time.Minute}),
		cache.NewDefaultKeyer(),
		cache.Policy{DefaultTTL: 5 * time.Minute},
		nil,
	)
	toolExecutor := toolexec.NewExecutor(upstream, dataStore, cacheMW, resilienceExec)

	h := &dispatcher.Handler{
		Tools:     loaded.Tools,
		DataCache: dataStore,
		Resolver:  placeholder.NewResolver(dataStore),
		Finder:    reference.NewFinder(dataStore),
		Policy:    policy.NewEvaluator(loaded.Policy),
		Consent:   consent.NewCoordinator(),
		ToolExec:  toolExecutor,
		Observe:   obsMiddleware,
	}

	authenticator, authorizer, err := buildAuth(loaded.AuthMode, loaded.AuthJWKSURL, loaded.APIKeys)
	if err != nil {
		return fmt.Errorf("mcppd: %w", err)
	}
	h.Authorizer = authorizer

	agg := health.NewAggregator()
	h.RegisterHealthChecks(agg)

	mux := dispatcher.NewMux(h, authenticator, agg)

	srv := &http.Server{
		Addr:    loaded.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("mcppd: server error: %w", err)
	case <-sigCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildAuth assembles the authenticator and authorizer pair for mode. Every
// mode other than "none" gates mcpp/provide_consent behind the "consent:decide"
// permission via a shared RBAC authorizer; they differ only in how the
// caller's identity is established.
//
// "none" runs the server with no authentication; mcpp/provide_consent is
// then reachable by any caller who can reach the dispatcher at all.
// "jwt" authenticates bearer tokens. When auth.jwks_url is set it verifies
// against keys fetched from that JWKS endpoint (refreshed and deduplicated
// via auth.JWKSKeyProvider's singleflight group); otherwise it falls back
// to the static HMAC secret in MCPP_JWT_SECRET.
// "api_key" authenticates the X-API-Key header against the pre-shared
// keys in auth.api_keys.
// "multi" accepts either: it tries the API key header first, falling back
// to the bearer token, via auth.CompositeAuthenticator.
func buildAuth(mode, jwksURL string, apiKeys []config.APIKeyFile) (auth.Authenticator, auth.Authorizer, error) {
	consentRBAC := auth.NewSimpleRBACAuthorizer(auth.RBACConfig{
		Roles: map[string]auth.RoleConfig{
			"consent_operator": {Permissions: []string{"consent:decide"}},
		},
		DefaultRole: "consent_operator",
	})

	switch mode {
	case "", "none":
		return nil, nil, nil
	case "jwt":
		authenticator, err := jwtAuthenticator(jwksURL)
		if err != nil {
			return nil, nil, err
		}
		return authenticator, consentRBAC, nil
	case "api_key":
		authenticator, err := apiKeyAuthenticator(apiKeys)
		if err != nil {
			return nil, nil, err
		}
		return authenticator, consentRBAC, nil
	case "multi":
		apiKeyAuth, err := apiKeyAuthenticator(apiKeys)
		if err != nil {
			return nil, nil, err
		}
		jwtAuth, err := jwtAuthenticator(jwksURL)
		if err != nil {
			return nil, nil, err
		}
		return auth.NewCompositeAuthenticator(apiKeyAuth, jwtAuth), consentRBAC, nil
	default:
		return nil, nil, fmt.Errorf("unrecognized auth mode %q", mode)
	}
}

// jwtAuthenticator builds a bearer-token authenticator, preferring a JWKS
// endpoint over the static HMAC secret when both could apply.
func jwtAuthenticator(jwksURL string) (*auth.JWTAuthenticator, error) {
	var keyProvider auth.KeyProvider
	if jwksURL != "" {
		keyProvider = auth.NewJWKSKeyProvider(auth.JWKSConfig{URL: jwksURL})
	} else {
		jwtSecret := os.Getenv("MCPP_JWT_SECRET")
		if jwtSecret == "" {
			return nil, fmt.Errorf("MCPP_JWT_SECRET must be set for JWT auth when auth.jwks_url is not configured")
		}
		keyProvider = auth.NewStaticKeyProvider([]byte(jwtSecret))
	}
	return auth.NewJWTAuthenticator(auth.JWTConfig{}, keyProvider), nil
}

// apiKeyAuthenticator builds an authenticator backed by the pre-shared
// keys declared in auth.api_keys.
func apiKeyAuthenticator(apiKeys []config.APIKeyFile) (*auth.APIKeyAuthenticator, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("auth.api_keys must list at least one key for API key auth")
	}
	store := auth.NewMemoryAPIKeyStore()
	for _, k := range apiKeys {
		if err := store.Add(&auth.APIKeyInfo{
			ID:        k.ID,
			KeyHash:   k.KeyHash,
			Principal: k.Principal,
			Roles:     k.Roles,
		}); err != nil {
			return nil, fmt.Errorf("mcppd: loading api key %s: %w", k.ID, err)
		}
	}
	return auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store), nil
}
