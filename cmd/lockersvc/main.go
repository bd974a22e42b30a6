package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/widmerroger/cardlock/configs"
	"github.com/widmerroger/cardlock/internal/broker"
	"github.com/widmerroger/cardlock/internal/lockersvc/handlers"
	"github.com/widmerroger/cardlock/internal/lockersvc/locker"
	"github.com/widmerroger/cardlock/internal/lockersvc/scan"
	"github.com/widmerroger/cardlock/internal/lockersvc/service"
	"github.com/widmerroger/cardlock/internal/lockersvc/store"
	"github.com/widmerroger/cardlock/internal/lockersvc/supervisor"
	"github.com/widmerroger/cardlock/internal/lockersvc/ws"
	"github.com/widmerroger/cardlock/internal/platform"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "locker"

var instanceId string

func init() {
	config.Logging(SERVICE_NAME + "_service")
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
}

func main() {
	// root context owns every long-lived goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// registry store
	registryStore, err := openRegistryStore()
	if err != nil {
		log.Fatalf("Failed to open registry store: %v", err)
	}
	defer registryStore.Close()
	registryService := service.NewRegistryService(registryStore)
	log.Printf("registry store opened successfully")

	// message transport
	tr := newTransport()
	if err := tr.Connect(ctx); err != nil {
		// no retry policy: the sensor is unreachable until next restart
		log.Errorf("Error: unable to connect to message broker %v", err)
		os.Exit(0)
	}
	defer tr.Close()

	// card scan ingestion
	dispatcher := scan.NewDispatcher()
	scanTopic := config.Getenv("TOPIC_SCANS", "IOE/widmerroger/RFID")
	if err := tr.Subscribe(scanTopic, func(payload []byte) {
		dispatcher.Deliver(string(payload))
	}); err != nil {
		log.Errorf("Error: unable to subscribe to scan topic %v", err)
		os.Exit(0)
	}

	promptTopic := config.Getenv("TOPIC_PROMPTS", "IOE/widmerroger/RFID_SCRIPT")
	scanTimeout := config.GetenvDuration("SCAN_TIMEOUT_MS", 0) // zero: wait forever
	gateway := scan.NewGateway(tr, dispatcher, promptTopic, scanTimeout)

	// ui feed, lock machine, supervision
	uiFeed := ws.NewWs()
	pc := platform.NewOS()
	lk := locker.New(registryService, gateway, pc, uiFeed)

	pollInterval := config.GetenvDuration("POLL_INTERVAL_MS", time.Second)
	manager := supervisor.NewManager(ctx, pollInterval, pc, lk)

	registrationService := service.NewRegistrationService(ctx, registryService, gateway, manager, uiFeed)

	// guard everything already registered
	names, err := registryService.LoadAllAppNames(ctx)
	if err != nil {
		log.Fatalf("Failed to load monitored applications: %v", err)
	}
	manager.ArmAll(names)

	// SIGHUP re-arms all supervisors, the hotkey analogue
	rearm := make(chan os.Signal, 1)
	signal.Notify(rearm, syscall.SIGHUP)
	go func() {
		for range rearm {
			names, err := registryService.LoadAllAppNames(ctx)
			if err != nil {
				log.Errorf("Error: rearm failed %v", err)
				continue
			}
			manager.ArmAll(names)
		}
	}()

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := config.Getenv("RATE_LIMIT", "60")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(registrationService, registryService, manager, uiFeed)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:        ":" + config.Getenv("LOCKER_SERVICE_PORT", "8090"),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service %s running at port %s", SERVICE_NAME, instanceId, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	cancel() // releases supervisors and blocked scan waits

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	manager.Wait()
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}

// openRegistryStore picks the registry backend: the flat csv file by default,
// sqlite when REGISTRY_DRIVER=sqlite.
func openRegistryStore() (store.Registry, error) {
	driver := config.Getenv("REGISTRY_DRIVER", "file")

	switch driver {
	case "sqlite":
		return store.NewSQLiteStore(config.Getenv("REGISTRY_PATH", "rfid_pairs.db"))
	default:
		return store.NewFileStore(config.Getenv("REGISTRY_PATH", "rfid_pairs.csv")), nil
	}
}

// newTransport picks the broker client: mqtt by default, nats for
// deployments bridged through a NATS server.
func newTransport() broker.Transport {
	if config.Getenv("TRANSPORT", "mqtt") == "nats" {
		return broker.NewNats()
	}
	return broker.NewMQTT("cardlock-" + instanceId)
}
