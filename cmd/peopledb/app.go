package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
	"github.com/alexanderjulianmartinez/peopledb/internal/dbmanager"
	"github.com/alexanderjulianmartinez/peopledb/internal/events"
	"github.com/alexanderjulianmartinez/peopledb/internal/events/kafka"
	"github.com/alexanderjulianmartinez/peopledb/internal/logging"
	"github.com/alexanderjulianmartinez/peopledb/internal/people"
	"github.com/alexanderjulianmartinez/peopledb/internal/screens"
)

type options struct {
	configPath string
	dsn        string
	debug      bool
}

// app is everything a command needs, opened from the config.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	db    *dbmanager.Manager
	store *people.Store
	bus   *events.Bus
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	return cfg, nil
}

func (o *options) open(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log, logOut, o.debug)
	if err != nil {
		return nil, err
	}

	db, err := dbmanager.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	var sinks []events.Sink
	if cfg.Events.Type == config.EventsKafka {
		pub, err := kafka.New(cfg.Events)
		if err != nil {
			db.Close()
			return nil, err
		}
		sinks = append(sinks, pub)
		logger.WithField("sink", pub.Name()).Info("event sink enabled")
	}

	return &app{
		cfg:   cfg,
		log:   logger,
		db:    db,
		store: people.NewStore(db),
		bus:   events.NewBus(logger, sinks...),
	}, nil
}

// listScreen makes sure the schema exists and returns a loaded list screen.
func (a *app) listScreen(ctx context.Context) (*screens.ListScreen, error) {
	if err := a.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	list := screens.NewListScreen(a.store, a.bus, a.log)
	if err := list.Load(ctx); err != nil {
		list.Close()
		return nil, err
	}
	return list, nil
}

func (a *app) Close() error {
	if err := a.bus.Close(); err != nil {
		a.log.WithError(err).Warn("closing event sinks")
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
