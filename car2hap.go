package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/XANi/go-yamlcfg"
	"github.com/XANi/goneric"
	"github.com/efigence/go-mon"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mlehmann/car2hap/config"
	"github.com/mlehmann/car2hap/hkbridge"
	"github.com/mlehmann/car2hap/mqttsource"
	"github.com/mlehmann/car2hap/vehicle"
)

var version string
var log *zap.SugaredLogger
var debug = true
var logLevel = zap.NewAtomicLevelAt(zapcore.DebugLevel)

func init() {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	// naive systemd detection. Drop timestamp if running under it
	if os.Getenv("JOURNAL_STREAM") != "" {
		consoleEncoderConfig.TimeKey = ""
	}
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && logLevel.Enabled(lvl)
	})
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, os.Stderr, lowPriority),
		zapcore.NewCore(consoleEncoder, os.Stderr, highPriority),
	)
	logger := zap.New(core)
	if debug {
		logger = logger.WithOptions(
			zap.Development(),
			zap.AddCaller(),
			zap.AddStacktrace(highPriority),
		)
	} else {
		logger = logger.WithOptions(
			zap.AddCaller(),
		)
	}
	log = logger.Sugar()
}

func main() {
	defer log.Sync()
	// register internal stats
	mon.RegisterGcStats()
	app := &cli.Command{
		Name:        "car2hap",
		Description: "Bridge vehicle telemetry to HomeKit",
		Version:     version,
		HideHelp:    true,
	}
	log.Infof("Starting %s version: %s", app.Name, version)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "help, h", Usage: "show help"},
		&cli.BoolFlag{Name: "debug, d", Usage: "enable debug logs"},
		&cli.StringFlag{Name: "config, c",
			Usage: "config file",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "HAP listen address",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("LISTEN_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "mqtt-addr",
			Usage: "mqtt broker address",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MQTT_ADDR"),
			),
		},
		&cli.StringFlag{
			Name:  "pincode",
			Usage: "HomeKit pairing pincode",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PINCODE"),
			),
		},
		&cli.StringFlag{
			Name:  "pprof-addr",
			Value: "",
			Usage: "address to run pprof on, disabled by default",
		},
	}
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Bool("help") {
			cli.ShowAppHelp(c)
			os.Exit(1)
		}
		cfg := config.Config{}
		if c.String("config") != "" {
			err := yamlcfg.LoadConfig([]string{c.String("config")}, &cfg)
			if err != nil {
				log.Fatalf("cannot load config: %s", err)
			}
		} else {
			log.Fatal("must specify --config")
		}
		if c.String("address") != "" {
			cfg.ListenAddress = c.String("address")
		}
		if c.String("mqtt-addr") != "" {
			cfg.MQTT.Address = c.String("mqtt-addr")
		}
		if c.String("pincode") != "" {
			cfg.Pincode = c.String("pincode")
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid config: %s", err)
		}
		debug = cfg.Debug || c.Bool("debug")
		if debug {
			logLevel.SetLevel(zapcore.DebugLevel)
		} else {
			logLevel.SetLevel(cfg.Level())
		}
		log.Debug("debug enabled")
		pprofAddr := c.String("pprof-addr")
		if pprofAddr == "" {
			pprofAddr = cfg.PProfAddress
		}
		if len(pprofAddr) > 0 {
			log.Infof("listening pprof/health/metrics on %s", pprofAddr)
			go func() {
				log.Errorf("failed to start debug listener: %s (ignoring)", http.ListenAndServe(pprofAddr, statusMux()))
			}()
		}

		garage := vehicle.NewGarage()
		bridge := goneric.Must(hkbridge.New(hkbridge.Config{
			Logger:               log.Named("bridge"),
			Garage:               garage,
			Address:              cfg.ListenAddress,
			Pincode:              cfg.Pincode,
			StateDir:             cfg.AccessoryStateDir,
			ConfigFile:           cfg.AccessoryConfigFile,
			IgnoreVINs:           cfg.IgnoreVINs,
			IgnoreAccessoryTypes: cfg.IgnoreAccessoryTypes,
			Firmware:             version,
		}))
		if err := bridge.Start(ctx); err != nil {
			log.Fatalf("error starting bridge: %s", err)
		}

		var source *mqttsource.Source
		if cfg.MQTT.Address != "" {
			var err error
			source, err = mqttsource.New(&mqttsource.Config{
				Address:     cfg.MQTT.Address,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				ClientID:    cfg.MQTT.ClientID,
				Logger:      log.Named("mq"),
				Garage:      garage,
			})
			if err != nil {
				bridge.Stop()
				log.Fatalf("error starting mqtt source: %s", err)
			}
		} else {
			log.Warn("no mqtt address configured, bridge starts empty")
		}

		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()

		if source != nil {
			source.Close()
		}
		bridge.Stop()
		return nil
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// statusMux serves pprof plus go-mon's healthcheck and metrics state.
func statusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/_status/health", mon.HandleHealthcheck)
	mux.HandleFunc("/_status/metrics", mon.HandleMetrics)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
