package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	authadapter "github.com/bnema/robinhood-cli/internal/adapters/auth"
	"github.com/bnema/robinhood-cli/internal/adapters/cache/sealed"
	"github.com/bnema/robinhood-cli/internal/adapters/cache/tomlcache"
	holdingsadapter "github.com/bnema/robinhood-cli/internal/adapters/render/holdings"
	chainstore "github.com/bnema/robinhood-cli/internal/adapters/secrets/chain"
	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/application"
	"github.com/bnema/robinhood-cli/internal/ports"
)

const (
	configName     = "config"
	configType     = "toml"
	configDir      = ".robinhood"
	cacheRootKey   = "cache.root"
	profileKey     = "session.profile"
	serviceName    = "robinhood"
	requestTimeout = 30 * time.Second
)

type app struct {
	service          *application.Service
	pipeline         *transport.Pipeline
	flow             *authadapter.Flow
	refreshFlow      *authadapter.RefreshFlow
	secretStore      ports.SecretStore
	holdingsRenderer func([]application.Holding, holdingsadapter.RenderOptions) (string, error)
	profile          string
	now              func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	defaultRoot, err := tomlcache.DefaultRoot()
	if err != nil {
		return nil, err
	}
	cfg.SetDefault(cacheRootKey, defaultRoot)
	cfg.SetDefault(profileKey, "")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cacheRoot := cfg.GetString(cacheRootKey)
	if cacheRoot == "" {
		return nil, errors.New("cache root is empty")
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, configDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	session := transport.NewSession()
	sink := transport.NewSink()
	pipeline := transport.NewPipeline(session, &http.Client{Timeout: requestTimeout}, sink)

	cache := tomlcache.NewStore(cacheRoot, serviceName)
	sealedCache := sealed.NewStore(cacheRoot, serviceName)
	prompt := newTerminalPrompt(os.Stdin, os.Stdout)

	return &app{
		service:          application.NewService(pipeline),
		pipeline:         pipeline,
		flow:             authadapter.NewFlow(pipeline, cache, prompt),
		refreshFlow:      authadapter.NewRefreshFlow(pipeline, sealedCache, secretStore, ports.SystemClock{}),
		secretStore:      secretStore,
		holdingsRenderer: holdingsadapter.Render,
		profile:          cfg.GetString(profileKey),
		now:              time.Now,
	}, nil
}
