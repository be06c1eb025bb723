package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"door_controller/internal/actuator"
	"door_controller/internal/button"
	"door_controller/internal/dispatcher"
	"door_controller/internal/display"
	"door_controller/internal/feedback"
	"door_controller/internal/gpio"
	"door_controller/internal/handlers"
	"door_controller/internal/history"
	"door_controller/internal/logger"
	"door_controller/internal/loop"
	"door_controller/internal/registry"
	"door_controller/internal/repository"
	"door_controller/internal/server"
	"door_controller/internal/service"
	"door_controller/internal/status"
	"door_controller/internal/transport"

	"github.com/spf13/viper"
)

func main() {
	log := logger.Get(logger.InfoLevel)

	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(db)

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Second)
	cfg, err := repos.Config.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Fatalw("failed to load device config", "err", err)
	}

	reg := registry.New()
	reg.Load(cfg.AuthorizedIDs)

	// Hardware. A missing GPIO chip is survivable: the controller keeps
	// serving the portal and the chat channel with no-op outputs, which is
	// how it runs on a development machine.
	hw := openHardware(log)
	defer hw.close()

	act := actuator.New(hw.door, hw.light,
		viper.GetDuration("actuator.door_pulse"),
		viper.GetDuration("actuator.light_pulse"),
		log,
	)
	hist := history.New()
	conn := &status.Connectivity{}
	rep := status.NewReporter(conn, act, reg)
	comp := display.NewComposer(viper.GetString("display.title"), hist, conn, display.LogSink{Log: log})

	var fb feedback.Sink = feedback.Noop{}
	if hw.buzzer != nil {
		fb = feedback.NewBuzzer(hw.buzzer)
	}

	trig := button.NewTrigger(viper.GetDuration("button.debounce"))
	hold := button.NewHold()
	hw.wireButtons(trig, hold, log)

	provisioned := cfg.Complete()

	var channel *transport.MQTTChannel
	var out transport.Outbound
	if provisioned {
		channel = transport.NewMQTTChannel(transport.MQTTConfig{
			Broker:   viper.GetString("mqtt.broker"),
			ClientID: viper.GetString("mqtt.client_id"),
			User:     viper.GetString("mqtt.user"),
			Token:    cfg.TransportToken,
			Prefix:   viper.GetString("mqtt.prefix"),
		}, log)
		out = channel
		if err := channel.Connect(); err != nil {
			// Not fatal: paho keeps retrying and the loop reports
			// MessagingOK=false meanwhile.
			log.Warnw("mqtt connect failed, retrying in background", "err", err)
		}
		defer channel.Disconnect()
	}

	disp := dispatcher.New(reg, act, hist, rep, repos.Operations, out, fb, log)

	probe := loop.TCPProbe{
		Addr:  viper.GetString("probe.addr"),
		Iface: viper.GetString("probe.iface"),
	}

	ctrl := loop.New(disp, channel, trig, hold, act, comp, conn, probe, log)

	var submitter service.Submitter
	if provisioned {
		submitter = ctrl
	}

	services := service.NewService(service.Deps{
		Submitter:     submitter,
		Reporter:      rep,
		Operations:    repos.Operations,
		Config:        repos.Config,
		AdminPassHash: cfg.AdminPassHash,
		SigningKey:    []byte(viper.GetString("portal.signing_key")),
	})
	apiHandler := handlers.NewHandler(services, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if provisioned {
		go runControlLoop(ctx, ctrl, log)
	} else {
		log.Infow("device not provisioned, provisioning portal only",
			"port", viper.GetString("port"))
	}

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("db.path", "door_controller.db")
	viper.SetDefault("log.level", logger.InfoLevel)

	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.client_id", "door-controller")
	viper.SetDefault("mqtt.user", "door-controller")
	viper.SetDefault("mqtt.prefix", "door")

	viper.SetDefault("gpio.chip", "gpiochip0")
	viper.SetDefault("gpio.door", 17)
	viper.SetDefault("gpio.light", 27)
	viper.SetDefault("gpio.buzzer", 22)
	viper.SetDefault("gpio.trigger", 23)
	viper.SetDefault("gpio.provision", 24)

	viper.SetDefault("actuator.door_pulse", actuator.DefaultPulse)
	viper.SetDefault("actuator.light_pulse", actuator.DefaultPulse)
	viper.SetDefault("button.debounce", button.DefaultDebounce)

	viper.SetDefault("display.title", "Door Controller")
	viper.SetDefault("probe.addr", "localhost:1883")
	viper.SetDefault("probe.iface", "")
	viper.SetDefault("portal.signing_key", "change-me-in-config")

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		// Defaults cover a dev run; a missing file is not fatal.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "door_controller.db")
		dbPath = "door_controller.db"
	}
	return repository.InitDB(dbPath)
}

// hardware groups the GPIO resources so main can wire and release them.
type hardware struct {
	mgr    *gpio.Manager
	door   actuator.Relay
	light  actuator.Relay
	buzzer actuator.Relay
}

func openHardware(log *logger.Logger) *hardware {
	hw := &hardware{}
	mgr, err := gpio.Open(viper.GetString("gpio.chip"), log)
	if err != nil {
		log.Warnw("gpio unavailable, outputs disabled", "err", err)
		return hw
	}
	hw.mgr = mgr

	hw.door = requestOutput(mgr, "gpio.door", log)
	hw.light = requestOutput(mgr, "gpio.light", log)
	hw.buzzer = requestOutput(mgr, "gpio.buzzer", log)
	return hw
}

func requestOutput(mgr *gpio.Manager, key string, log *logger.Logger) actuator.Relay {
	relay, err := mgr.Output(viper.GetInt(key))
	if err != nil {
		log.Warnw("gpio output unavailable", "pin", key, "err", err)
		return nil
	}
	if relay == nil {
		return nil
	}
	return relay
}

func (hw *hardware) wireButtons(trig *button.Trigger, hold *button.Hold, log *logger.Logger) {
	if hw.mgr == nil {
		return
	}
	if err := hw.mgr.WireTrigger(viper.GetInt("gpio.trigger"), trig); err != nil {
		log.Warnw("trigger button unavailable", "err", err)
	}
	if err := hw.mgr.WireHold(viper.GetInt("gpio.provision"), hold); err != nil {
		log.Warnw("provision button unavailable", "err", err)
	}
}

func (hw *hardware) close() {
	if hw.mgr != nil {
		hw.mgr.Close()
	}
}

// runControlLoop drives the core until shutdown or a provisioning request.
func runControlLoop(ctx context.Context, ctrl *loop.Loop, log *logger.Logger) {
	mode := ctrl.Run(ctx)
	if mode == loop.ModeProvisioning {
		log.Infow("control loop stopped, provisioning portal stays up; restart after saving")
	}
}

func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
