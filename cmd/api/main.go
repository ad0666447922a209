package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/pprof"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yardimagi/backend-api-go/broker"
	"github.com/yardimagi/backend-api-go/catalog"
	"github.com/yardimagi/backend-api-go/handler"
	"github.com/yardimagi/backend-api-go/matching"
	"github.com/yardimagi/backend-api-go/middleware/auth"
	"github.com/yardimagi/backend-api-go/middleware/cache"
	"github.com/yardimagi/backend-api-go/notifier"
	log "github.com/yardimagi/backend-api-go/pkg/logger"
	"github.com/yardimagi/backend-api-go/profile"
	"github.com/yardimagi/backend-api-go/repository"
	"github.com/yardimagi/backend-api-go/requests"
)

var transitionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "help_request_transitions_total",
}, []string{"operation", "status"})

type Application struct {
	app      *fiber.App
	requests *handler.RequestsHandler
}

func (a *Application) Register() {
	a.app.Get("/healthcheck", handler.HealthCheck)
	a.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	a.app.Get("/monitor", monitor.New())
	a.app.Get("/caches/prune", handler.InvalidateCache())

	a.app.Post("/requests", a.requests.HandleCreate)
	a.app.Get("/requests/nearby", a.requests.HandleNearby)
	a.app.Get("/requests/:id", a.requests.HandleGet)
	a.app.Patch("/requests/:id", a.requests.HandleUpdate)
	a.app.Delete("/requests/:id", a.requests.HandleDelete)
	a.app.Post("/requests/:id/approve", a.requests.HandleApprove)
	a.app.Post("/requests/:id/complete", a.requests.HandleComplete)
	a.app.Post("/requests/:id/notes", a.requests.HandleAddNote)
	a.app.Post("/requests/:id/interest", a.requests.HandleMarkInterest)
	a.app.Post("/requests/:id/rate", a.requests.HandleRate)
	a.app.Post("/requests/:id/flag", a.requests.HandleFlag)
}

// @title						Yardim Agi API
// @version					    1.0
// @description				    Help request lifecycle and nearby matching API
// @host						api.yardimagi.org
// @BasePath					/
// @schemes					    https http
// @securityDefinitions.apiKey	ApiKeyAuth
// @in							header
// @name						X-Api-Key
func main() {
	repo := repository.New()
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		log.Logger().Panic("could not apply database schema", zap.Error(err))
	}

	var notify notifier.Notifier = notifier.Noop{}
	kafkaProducer, err := broker.NewProducer()
	if err != nil {
		log.Logger().Warn("failed to init kafka producer, notifications disabled", zap.Error(err))
	} else {
		notify = notifier.NewKafka(kafkaProducer)
	}

	profiles := profile.NewClient()
	items := catalog.New(repo.Pool())
	service := requests.NewService(repo, items, profiles, notify, log.Logger())
	matcher := matching.NewMatcher(repo, profiles)

	app := fiber.New()
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New())
	app.Use(recover.New())
	app.Use(auth.New())
	app.Use(pprof.New())
	app.Use(cache.New())
	app.Use(transitionMetrics())

	application := &Application{
		app:      app,
		requests: handler.NewRequestsHandler(service, matcher),
	}
	application.Register()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT)
	signal.Notify(c, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("application gracefully shutting down..")
		_ = app.Shutdown()
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "80"
	}
	if err := app.Listen(":" + port); err != nil {
		panic(fmt.Sprintf("app error: %s", err.Error()))
	}
}

func transitionMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if op := transitionOperation(c.Route().Path, c.Method()); op != "" {
			transitionCounter.With(prometheus.Labels{
				"operation": op,
				"status":    strconv.Itoa(c.Response().StatusCode()),
			}).Inc()
		}
		return err
	}
}

func transitionOperation(route, method string) string {
	switch route {
	case "/requests":
		if method == fiber.MethodPost {
			return "create"
		}
	case "/requests/:id":
		switch method {
		case fiber.MethodPatch:
			return "update"
		case fiber.MethodDelete:
			return "delete"
		}
	case "/requests/:id/approve":
		return "approve"
	case "/requests/:id/complete":
		return "complete"
	case "/requests/:id/notes":
		return "note"
	case "/requests/:id/interest":
		return "interest"
	case "/requests/:id/rate":
		return "rate"
	case "/requests/:id/flag":
		return "flag"
	}
	return ""
}
