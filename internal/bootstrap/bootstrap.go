package bootstrap

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

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	appservices "transcribe-server-go/internal/app/services"
	"transcribe-server-go/internal/domain/audio"
	"transcribe-server-go/internal/domain/eventbus"
	"transcribe-server-go/internal/domain/transcription"
	_ "transcribe-server-go/internal/domain/transcription/providers/whisper"
	"transcribe-server-go/internal/domain/translation"
	_ "transcribe-server-go/internal/domain/translation/providers/google"
	_ "transcribe-server-go/internal/domain/translation/providers/llm"
	platformconfig "transcribe-server-go/internal/platform/config"
	platformerrors "transcribe-server-go/internal/platform/errors"
	platformlogging "transcribe-server-go/internal/platform/logging"
	platformobservability "transcribe-server-go/internal/platform/observability"
	httptransport "transcribe-server-go/internal/transport/http"
	httpsystem "transcribe-server-go/internal/transport/http/system"
	httptranscribe "transcribe-server-go/internal/transport/http/transcribe"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>Transcribe API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config                *platformconfig.Config
	configPath            string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc

	asr        transcription.Provider
	translator translation.Provider
	speech     *appservices.SpeechService
}

// Run starts the whole service lifecycle: configuration, logging, backend
// providers and both HTTP listeners, with a graceful stop on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	if state.speech == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"speech service not initialised",
		)
	}

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability shutdown failed: %v", err)
			}
		}()
	}

	defer func() {
		if state.asr != nil {
			if err := state.asr.Cleanup(); err != nil {
				logger.WarnTag("ASR", "provider cleanup failed: %v", err)
			}
		}
		if state.translator != nil {
			if err := state.translator.Cleanup(); err != nil {
				logger.WarnTag("TRANSLATE", "provider cleanup failed: %v", err)
			}
		}
		eventbus.Shutdown()
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if err := startHTTPServers(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "service stopped cleanly")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation order")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
	logger.InfoTag("BOOT", "starting listeners")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "providers:init",
			Title:     "Initialise speech backends",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initProvidersStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}

	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level: state.config.Log.Level,
		Dir:   state.config.Log.Dir,
		File:  state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logger = logger
	platformlogging.DefaultLogger = logger

	logger.InfoTag(
		"BOOT",
		"logging ready [%s] config from %s",
		state.config.Log.Level,
		state.configPath,
	)

	eventbus.SetupEventHandlers()

	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state == nil || state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown

	return nil
}

func initProvidersStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil || state.logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"providers:init",
			"missing config/logger",
		)
	}

	cfg := state.config
	logger := state.logger

	asrCfg, ok := cfg.ASR[cfg.Selected.ASR]
	if !ok {
		return platformerrors.New(
			platformerrors.KindConfig,
			"providers:init",
			fmt.Sprintf("selected ASR backend %q is not configured", cfg.Selected.ASR),
		)
	}
	asr, err := transcription.NewProvider(cfg.Selected.ASR, asrCfg, logger)
	if err != nil {
		return err
	}
	if err := asr.Initialize(); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "providers:init", "failed to initialise recognition backend", err)
	}
	state.asr = asr

	if cfg.Selected.Translate != "" {
		translateCfg, ok := cfg.Translate[cfg.Selected.Translate]
		if !ok {
			return platformerrors.New(
				platformerrors.KindConfig,
				"providers:init",
				fmt.Sprintf("selected translation backend %q is not configured", cfg.Selected.Translate),
			)
		}
		translator, err := translation.NewProvider(cfg.Selected.Translate, translateCfg, logger)
		if err != nil {
			return err
		}
		if err := translator.Initialize(); err != nil {
			return platformerrors.Wrap(platformerrors.KindBootstrap, "providers:init", "failed to initialise translation backend", err)
		}
		state.translator = translator
	} else {
		logger.InfoTag("BOOT", "no translation backend selected, to_language requests will fail")
	}

	validator := audio.NewValidator(cfg.Upload, logger)
	state.speech = appservices.NewSpeechService(validator, state.asr, state.translator, logger)

	return nil
}

func startHTTPServers(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	transcribeService, err := httptranscribe.NewService(state.speech, logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "transcribe:new-service", "failed to create transcribe service", err)
	}
	systemService, err := httpsystem.NewService(config, logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "system:new-service", "failed to create system service", err)
	}

	if err := transcribeService.Start(groupCtx, router, httpRouter.Root); err != nil {
		return err
	}
	if err := systemService.Start(groupCtx, router, httpRouter.API); err != nil {
		return err
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "failed to generate openapi spec: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{"error": err.Error()},
				Message: "failed to generate openapi spec",
				Code:    http.StatusInternalServerError,
			})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	plainAddr := fmt.Sprintf("%s:%d", config.Server.IP, config.Server.Port)
	plainServer := &http.Server{Addr: plainAddr, Handler: router}

	g.Go(func() error {
		logger.InfoTag("HTTP", "listening on http://%s", plainAddr)
		logger.InfoTag("HTTP", "api docs at http://%s/docs", plainAddr)

		go shutdownOnDone(groupCtx, plainServer, logger, "http")

		if err := plainServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "http listener failed: %v", err)
			return err
		}
		return nil
	})

	startTLSServer(config, logger, router, g, groupCtx)

	return nil
}

// startTLSServer brings up the https listener when the certificate pair is
// present. A missing pair is a logged skip, not an error, so plain http
// deployments keep working.
func startTLSServer(
	config *platformconfig.Config,
	logger *platformlogging.Logger,
	router *gin.Engine,
	g *errgroup.Group,
	groupCtx context.Context,
) {
	tls := config.Server.TLS
	if !tlsListenerEnabled(tls, logger) {
		return
	}

	tlsAddr := fmt.Sprintf("%s:%d", config.Server.IP, tls.Port)
	tlsServer := &http.Server{Addr: tlsAddr, Handler: router}

	g.Go(func() error {
		logger.InfoTag("HTTP", "listening on https://%s", tlsAddr)

		go shutdownOnDone(groupCtx, tlsServer, logger, "https")

		if err := tlsServer.ListenAndServeTLS(tls.CertFile, tls.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "https listener failed: %v", err)
			return err
		}
		return nil
	})
}

func tlsListenerEnabled(tls platformconfig.TLSConfig, logger *platformlogging.Logger) bool {
	if tls.Port <= 0 {
		logger.InfoTag("HTTP", "https listener disabled")
		return false
	}
	for _, path := range []string{tls.CertFile, tls.KeyFile} {
		if _, err := os.Stat(path); err != nil {
			logger.WarnTag("HTTP", "https listener skipped, %s not readable: %v", path, err)
			return false
		}
	}
	return true
}

func shutdownOnDone(ctx context.Context, server *http.Server, logger *platformlogging.Logger, name string) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorTag("HTTP", "%s listener shutdown failed: %v", name, err)
	} else {
		logger.InfoTag("HTTP", "%s listener stopped", name)
	}
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown requested (%v), closing listeners", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all listeners closed")
	case <-time.After(15 * time.Second):
		timeoutErr := errors.New("shutdown timed out")
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return timeoutErr
	}
	return nil
}
