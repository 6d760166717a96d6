// Package wire assembles the application graph. Each component is built once
// and shared; commands pull what they need through the getters.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/adapters/audio"
	"github.com/example/inkwell/internal/adapters/escpos"
	"github.com/example/inkwell/internal/adapters/gemini"
	"github.com/example/inkwell/internal/adapters/gmail"
	"github.com/example/inkwell/internal/adapters/imap"
	"github.com/example/inkwell/internal/adapters/sqlite"
	"github.com/example/inkwell/internal/app"
	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/db"
	"github.com/example/inkwell/internal/logging"
	"github.com/example/inkwell/internal/ports/primary"
	"github.com/example/inkwell/internal/ports/secondary"
)

var (
	configPath string

	cfgOnce sync.Once
	cfg     *config.Config
	cfgErr  error

	logOnce sync.Once
	logger  *zap.Logger
	logErr  error

	dbOnce sync.Once
	dbConn *sql.DB
	dbErr  error

	sourceOnce sync.Once
	source     secondary.MailSource
	sourceErr  error

	classifierOnce sync.Once
	classifier     secondary.Classifier
	classifierErr  error

	transportOnce sync.Once
	transport     secondary.Transport
	transportErr  error

	triggerOnce sync.Once
	trigger     *app.TriggerController

	deliveryOnce sync.Once
	delivery     *app.DeliveryEngine
	deliveryErr  error

	missionSvcOnce sync.Once
	missionSvc     primary.MissionService
	missionSvcErr  error

	monitorSvcOnce sync.Once
	monitorSvc     primary.MonitorService
	monitorSvcErr  error
)

// SetConfigPath points the wiring at an explicit config file. Must be called
// before the first getter; the persistent pre-run hook does this.
func SetConfigPath(path string) {
	configPath = path
}

// Config loads and validates the runtime configuration.
func Config() (*config.Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = config.Load(configPath)
		if cfgErr == nil {
			cfgErr = cfg.Validate()
		}
	})
	return cfg, cfgErr
}

// Logger builds the shared zap logger from config.
func Logger() (*zap.Logger, error) {
	logOnce.Do(func() {
		c, err := Config()
		if err != nil {
			logErr = err
			return
		}
		logger, logErr = logging.New(c.Log.Level, c.Log.File)
	})
	return logger, logErr
}

// DB opens the SQLite database and applies the schema.
func DB() (*sql.DB, error) {
	dbOnce.Do(func() {
		c, err := Config()
		if err != nil {
			dbErr = err
			return
		}
		dbConn, dbErr = db.Open(c.DB.Path)
	})
	return dbConn, dbErr
}

// MailSource builds the configured mail connector.
func MailSource(ctx context.Context) (secondary.MailSource, error) {
	sourceOnce.Do(func() {
		c, err := Config()
		if err != nil {
			sourceErr = err
			return
		}
		switch c.Mail.Source {
		case "imap":
			source = imap.New(c.Mail.IMAP.Host, c.Mail.IMAP.Username, c.Mail.IMAP.Password, c.Mail.IMAP.Mailbox)
		case "gmail":
			source, sourceErr = gmail.New(ctx, c.Mail.Gmail.CredentialsFile, c.Mail.Gmail.TokenFile)
		default:
			sourceErr = fmt.Errorf("unknown mail source %q", c.Mail.Source)
		}
	})
	return source, sourceErr
}

// Classifier builds the Gemini-backed classifier.
func Classifier(ctx context.Context) (secondary.Classifier, error) {
	classifierOnce.Do(func() {
		c, err := Config()
		if err != nil {
			classifierErr = err
			return
		}
		classifier, classifierErr = gemini.New(ctx, c.Gemini.APIKey, c.Gemini.Model)
	})
	return classifier, classifierErr
}

// Transport probes the candidate list and returns the selected printer
// transport. The fallback chain ends at a discard sink, so selection only
// fails on a construction-level problem.
func Transport() (secondary.Transport, error) {
	transportOnce.Do(func() {
		c, err := Config()
		if err != nil {
			transportErr = err
			return
		}
		log, err := Logger()
		if err != nil {
			transportErr = err
			return
		}
		transport, transportErr = app.SelectTransport(escpos.ProbeList(c.Printer), log)
	})
	return transport, transportErr
}

// TriggerController builds the side-effect controller (webhooks and audio).
func TriggerController() (*app.TriggerController, error) {
	var buildErr error
	triggerOnce.Do(func() {
		c, err := Config()
		if err != nil {
			buildErr = err
			return
		}
		log, err := Logger()
		if err != nil {
			buildErr = err
			return
		}
		player := audio.NewPlayer(c.Audio.File, c.Audio.Sink)
		trigger = app.NewTriggerController(c.Trigger, c.Audio, player, log)
	})
	if trigger == nil && buildErr == nil {
		buildErr = fmt.Errorf("trigger controller unavailable")
	}
	return trigger, buildErr
}

// Delivery builds the print delivery engine around the selected transport.
func Delivery() (*app.DeliveryEngine, error) {
	deliveryOnce.Do(func() {
		c, err := Config()
		if err != nil {
			deliveryErr = err
			return
		}
		log, err := Logger()
		if err != nil {
			deliveryErr = err
			return
		}
		t, err := Transport()
		if err != nil {
			deliveryErr = err
			return
		}
		trig, err := TriggerController()
		if err != nil {
			deliveryErr = err
			return
		}
		conn, err := DB()
		if err != nil {
			deliveryErr = err
			return
		}
		jobs := sqlite.NewPrintJobRepository(conn)
		delivery = app.NewDeliveryEngine(t, trig, jobs, c.Printer.AgentName, log)
	})
	return delivery, deliveryErr
}

// MissionService builds the mission management service.
func MissionService() (primary.MissionService, error) {
	missionSvcOnce.Do(func() {
		conn, err := DB()
		if err != nil {
			missionSvcErr = err
			return
		}
		log, err := Logger()
		if err != nil {
			missionSvcErr = err
			return
		}
		d, err := Delivery()
		if err != nil {
			missionSvcErr = err
			return
		}
		missionSvc = app.NewMissionService(sqlite.NewMissionRepository(conn), d, log)
	})
	return missionSvc, missionSvcErr
}

// MonitorService builds the full pipeline orchestrator.
func MonitorService(ctx context.Context) (primary.MonitorService, error) {
	monitorSvcOnce.Do(func() {
		c, err := Config()
		if err != nil {
			monitorSvcErr = err
			return
		}
		conn, err := DB()
		if err != nil {
			monitorSvcErr = err
			return
		}
		log, err := Logger()
		if err != nil {
			monitorSvcErr = err
			return
		}
		src, err := MailSource(ctx)
		if err != nil {
			monitorSvcErr = err
			return
		}
		cls, err := Classifier(ctx)
		if err != nil {
			monitorSvcErr = err
			return
		}
		d, err := Delivery()
		if err != nil {
			monitorSvcErr = err
			return
		}
		monitorSvc = app.NewMonitorService(
			src, cls,
			sqlite.NewMissionRepository(conn),
			sqlite.NewProcessedRepository(conn),
			sqlite.NewConfigRepository(conn),
			d,
			c.Monitor.IntervalMinutes, c.Monitor.MaxPerCycle,
			log,
		)
	})
	return monitorSvc, monitorSvcErr
}

// Shutdown releases everything that was actually built, in reverse dependency
// order. Safe to call when nothing was wired.
func Shutdown() {
	if trigger != nil {
		trigger.Close()
	}
	if delivery != nil {
		_ = delivery.Close()
	}
	if dbConn != nil {
		_ = dbConn.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}
