package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/daypaste/dayclip/internal/config"
	"github.com/daypaste/dayclip/internal/infra/database"
	"github.com/daypaste/dayclip/internal/infra/repository"
	"github.com/daypaste/dayclip/internal/infra/trace"
	"github.com/daypaste/dayclip/internal/present/rest"
	"github.com/daypaste/dayclip/internal/service"
	"github.com/daypaste/dayclip/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	signal := service.NewSignalService(rdb)

	var feed usecase.FeedCache
	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		feed = service.NewFeedCache(mc)
	}

	entryRepo := repository.NewEntryRepository(db)
	clipboard := usecase.NewClipboardUsecase(entryRepo, signal, feed, usecase.Limits{
		DayHistory:  conf.Server.DayHistory,
		LatestLimit: conf.Server.LatestLimit,
	})
	render := service.NewRenderService()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := trace.Setup(context.Background(), conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up tracing: " + err.Error())
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error(
					"failed to shut down tracer provider",
					slog.String("error", err.Error()),
					slog.String("module", "main"),
				)
			}
		}()
		e.Use(otelecho.Middleware("dayclipd"))
	}

	handler := rest.NewHandler(conf.Server, clipboard, render, signal)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
