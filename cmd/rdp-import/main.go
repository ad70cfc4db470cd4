// Command rdp-import loads a CSV file of measurements into the rdp database.
//
// The first row is the header. It must contain a "time" column holding
// ISO-8601 timestamps; every other column must be named after an existing
// value type. All values are recorded against a single device.
//
// Usage:
//
//	# Import for an existing device
//	go run ./cmd/rdp-import -file readings.csv -device 3
//
//	# Register the device first, then import
//	go run ./cmd/rdp-import -file readings.csv -create-device /dev/ttyUSB0 -name "Kitchen sensor"
//
// Database location and logging come from .env, RDP_CONFIG_FILE and the
// environment (SQLITE_DB_PATH, SQLITE_DRIVER, LOG_LEVEL, LOG_FORMAT).
// The import is all-or-nothing: any bad row leaves the database unchanged,
// including a device registered with -create-device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/strefethen/rdp-go/internal/apperrors"
	"github.com/strefethen/rdp-go/internal/config"
	"github.com/strefethen/rdp-go/internal/db"
	"github.com/strefethen/rdp-go/internal/logging"
	"github.com/strefethen/rdp-go/internal/store"
)

func main() {
	filePath := flag.String("file", "", "CSV file to import (required)")
	deviceID := flag.Int64("device", 0, "id of the device the values belong to")
	createDevice := flag.String("create-device", "", "register a device with this path and import into it")
	deviceName := flag.String("name", "", "display name for -create-device")
	flag.Parse()

	if *filePath == "" || (*deviceID == 0 && *createDevice == "") {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *filePath, *deviceID, *createDevice, *deviceName); err != nil {
		appErr := apperrors.EnsureAppError(err)
		logger.Error().Err(err).Str("code", string(appErr.Code)).Str("file", *filePath).Msg("import failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, filePath string, deviceID int64, createDevice, deviceName string) error {
	dbPair, err := db.Open(db.Options{
		Path:           cfg.SQLiteDBPath,
		Driver:         cfg.SQLiteDriver,
		BusyTimeoutMs:  cfg.BusyTimeoutMs,
		ReaderPoolSize: cfg.ReaderPoolSize,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbPair.Close()

	s := store.New(dbPair, logger)

	csvText, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}

	created := false
	if createDevice != "" {
		device, err := s.AddOrUpdateDevice(ctx, store.DeviceInput{Device: createDevice, Name: deviceName})
		if err != nil {
			return fmt.Errorf("create device: %w", err)
		}
		deviceID = device.ID
		created = true
		logger.Info().Int64("device_id", device.ID).Str("device", device.Device).Msg("device registered")
	}

	inserted, err := s.LoadCSV(ctx, csvText, deviceID)
	if err != nil {
		if created {
			// The import rolled back; drop the device so a retry starts clean.
			if _, delErr := s.DeleteDevice(context.WithoutCancel(ctx), deviceID); delErr != nil {
				return errors.Join(err, fmt.Errorf("remove device %d: %w", deviceID, delErr))
			}
			logger.Info().Int64("device_id", deviceID).Msg("device removed after failed import")
		}
		return err
	}

	logger.Info().
		Str("file", filePath).
		Str("db", cfg.SQLiteDBPath).
		Int64("device_id", deviceID).
		Int("values", inserted).
		Msg("import complete")
	return nil
}
