package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/pagebot/core/bootstrap"
	"github.com/m3rciful/pagebot/core/catalog"
	corecmd "github.com/m3rciful/pagebot/core/cmd"
	coreconfig "github.com/m3rciful/pagebot/core/config"
	coredatabase "github.com/m3rciful/pagebot/core/database"
	coretelegram "github.com/m3rciful/pagebot/core/telegram"
	"github.com/m3rciful/pagebot/core/telegram/interact"
	"github.com/m3rciful/pagebot/core/telegram/router"
)

// appConfig extends the core configuration with the database section.
type appConfig struct {
	coreconfig.Config `yaml:",inline"`
	Database          coredatabase.Config `yaml:"database"`
}

// CoreConfig satisfies corecmd.ConfigCarrier.
func (c *appConfig) CoreConfig() *coreconfig.Config { return &c.Config }

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg appConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// app holds everything a running bot needs.
type app struct {
	cfg     *appConfig
	store   *catalog.Store
	hub     *interact.Hub
	handler *catalog.Handler
}

func buildApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*appConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", carrier)
	}

	result, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(result.DB)
	seeders := []bootstrap.Seeder{&catalog.Seeder{Titles: defaultCatalog}}
	if err := bootstrap.RunSeeders(context.Background(), store, seeders...); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	hub := interact.NewHub()
	return &app{
		cfg:     cfg,
		store:   store,
		hub:     hub,
		handler: catalog.NewHandler(store, hub, cfg.Pager),
	}, nil
}

// TelegramRunOptions wires the registry, middlewares and routes.
func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handler.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.hub, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(a.hub, reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
	}, nil
}

// defaultCatalog seeds an empty database so /list has something to show.
var defaultCatalog = []string{
	"Getting started",
	"Commands overview",
	"Browsing pages",
	"Jumping to a page",
	"Session timeouts",
	"Admin tools",
}
