package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/opsim/engine/internal/api"
	"github.com/opsim/engine/internal/classdb"
	"github.com/opsim/engine/internal/config"
	"github.com/opsim/engine/internal/dispatcher"
	"github.com/opsim/engine/internal/handlers"
	"github.com/opsim/engine/internal/influx"
	"github.com/opsim/engine/internal/logging"
	"github.com/opsim/engine/internal/monitor"
	"github.com/opsim/engine/internal/relay"
	"github.com/opsim/engine/internal/storage"
)

// AppVersion can be set at build time via ldflags.
var (
	AppVersion = "0.0.1"
	AppName    = "opsim_server"
)

var (
	SessionStartTime = time.Now()

	SlogManager *logging.SlogManager

	storageBackend  storage.Backend
	eventDispatcher *dispatcher.Dispatcher
	relayServer     *relay.Server
	influxManager   *influx.Manager
	handlerService  *handlers.Service
)

func main() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", "")
	logger := SlogManager.Logger()

	if err := config.Load("."); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		logger.Info("Loaded config")
	}

	// create logs dir if it doesn't exist
	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		_ = os.Mkdir(logsDir, 0755)
	}

	logFilePath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	}

	gelfAddr := ""
	if viper.GetBool("graylog.enabled") {
		gelfAddr = viper.GetString("graylog.address")
	}
	SlogManager.Setup(logFile, viper.GetString("logLevel"), gelfAddr)
	logger = SlogManager.Logger()
	logger.Info("Starting up", "version", AppVersion, "logFile", logFilePath)

	// CLI subcommands exit before the server spins up.
	if len(os.Args) > 1 {
		runCLI(os.Args[1:])
		return
	}

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		logger.Error("Failed to create dispatcher", "error", err)
		os.Exit(1)
	}

	storageBackend, err = storage.NewBackend(config.Storage(), SlogManager)
	if err != nil {
		logger.Error("Failed to create storage backend", "error", err)
		os.Exit(1)
	}
	if err := storageBackend.Init(); err != nil {
		logger.Error("Failed to initialize storage backend", "error", err)
		os.Exit(1)
	}
	logger.Info("Storage backend initialized", "type", viper.GetString("storage.type"))

	if viper.GetBool("influx.enabled") {
		backupPath := filepath.Join(logsDir, fmt.Sprintf("%s_influx_backup.gz", AppName))
		influxManager = influx.NewManager(zlog, backupPath)
		if err := influxManager.Connect(); err != nil {
			logger.Warn("Telemetry disabled", "error", err)
			influxManager = nil
		}
	}

	var broadcaster handlers.Broadcaster
	if viper.GetBool("relay.enabled") {
		relayServer = relay.New(relay.Config{
			ListenAddr: viper.GetString("relay.listenAddr"),
			Secret:     viper.GetString("relay.secret"),
		}, eventDispatcher, logger)
		broadcaster = relayServer
	}

	var classDB *classdb.DB
	if path := viper.GetString("engine.classDbPath"); path != "" {
		classDB, err = classdb.LoadFile(path)
		if err != nil {
			logger.Warn("Class table unavailable", "path", path, "error", err)
			classDB = nil
		} else {
			logger.Info("Class table loaded", "path", path, "classes", classDB.Len())
		}
	}

	if viper.GetBool("api.enabled") {
		apiClient := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
		if err := apiClient.Healthcheck(); err != nil {
			logger.Warn("Web frontend unreachable", "url", viper.GetString("api.serverUrl"), "error", err)
		} else {
			logger.Info("Web frontend reachable", "url", viper.GetString("api.serverUrl"))
		}
	}

	handlerService = handlers.NewService(handlers.Dependencies{
		LogManager:       SlogManager,
		Backend:          storageBackend,
		Broadcaster:      broadcaster,
		Influx:           influxManager,
		ClassDB:          classDB,
		DoctrineDefaults: config.DoctrineDefaults(),
		ExportDir:        config.Storage().Memory.OutputDir,
	}, handlers.NewScenarioContext())
	handlerService.Register(eventDispatcher)
	logger.Info("Handlers registered with dispatcher")

	if relayServer != nil {
		relayServer.Start()
	}

	clientCount := func() int { return 0 }
	if relayServer != nil {
		clientCount = relayServer.ClientCount
	}
	monitorService := monitor.NewService(monitor.Dependencies{
		LogManager:  SlogManager,
		SimTime:     handlerService.SimTime,
		StepCount:   handlerService.StepCount,
		ClientCount: clientCount,
	})
	monitorService.Start(30 * time.Second)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down")
	monitorService.Stop()
	if err := handlerService.EndScenario(); err != nil {
		logger.Debug("No recording to close", "error", err)
	}
	if relayServer != nil {
		_ = relayServer.Close()
	}
	if err := storageBackend.Close(); err != nil {
		logger.Error("Error closing storage backend", "error", err)
	}
	_ = SlogManager.Close()
}
