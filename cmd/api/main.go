package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/config"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/absensi-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/ratelimit"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absensi-backend-go/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/absensi-backend-go/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/absensi-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/absensi-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/absensi-backend-go/internal/service/employee"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	var revocations jwt.RevocationStore
	if cfg.Redis.Addr != "" {
		client, err := redisRepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		revocations = redisRepo.NewRevocationStore(client)
		slog.Info("Token revocation backed by redis", "addr", cfg.Redis.Addr)
	} else {
		slog.Warn("REDIS_ADDR not set, revoked tokens are kept in memory")
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, revocations)
	if err != nil {
		return err
	}

	clk := clock.New(cfg.App.Location)
	hub := sse.NewHub()
	metrics.Register(func() float64 { return float64(hub.TotalSubscribers()) })

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	authService := serviceAuth.NewAuthService(employeeRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, attendanceRepo, cfg.App.Location)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		clk,
		attendanceService.Options{
			Windows: attendance.WindowConfig{
				CheckIn:                cfg.Attendance.CheckIn,
				CheckOut:               cfg.Attendance.CheckOut,
				CheckOutWithoutCheckIn: cfg.Attendance.CheckOutWithoutCheckIn,
			},
			Offices:        cfg.Attendance.Offices,
			ServerGeofence: cfg.Attendance.ServerGeofence,
		},
		hub,
	)

	scheduler := cron.NewScheduler()
	cron.NewDailySummaryJob(attendanceSvc, clk).Register(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			AllowedOrigins: cfg.App.AllowedOrigins,
			ClockLimiter: ratelimit.New(ratelimit.Config{
				PerMinute: cfg.Attendance.RatePerMinute,
				Burst:     cfg.Attendance.RateBurst,
			}),
		},
		JWTService,
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub, clk),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// live feed streams end when the signal context is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "timezone", cfg.App.Timezone, "offices", len(cfg.Attendance.Offices))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
