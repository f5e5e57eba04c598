package config

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var InstanceId string

// LoadEnv pulls ./.env into the process environment. A missing file is
// fine in containers, where the environment comes from the orchestrator.
func LoadEnv(service string) {
	if err := godotenv.Load("./.env"); err != nil {
		log.Infof("%s service starting without .env file", service)
		return
	}
	log.Info(".env file loaded")
}

// CreateUniqueInstance tags this process with a fresh uuid so log lines
// from scaled-out replicas can be told apart.
func CreateUniqueInstance(service string) string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("error generating instance id: %s", err)
	}
	InstanceId = id.String()
	log.Infof("%s service instance %s ready", service, InstanceId)
	return InstanceId
}

func GetInstanceId() string {
	return InstanceId
}

// CORS allows the web client origins. CORS_ORIGINS overrides the defaults
// with a comma-separated list.
func CORS() *cors.Cors {
	origins := []string{"https://fannyleague.app", "http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Logging sends logrus output to logs/<service>.log, falling back to
// stderr when the folder cannot be prepared.
func Logging(service string) {
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)

	logFolder := "logs"
	if err := os.MkdirAll(logFolder, 0755); err != nil {
		log.Warnf("unable to create log folder, logging to stderr: %s", err)
		return
	}

	logFilePath := filepath.Join(logFolder, service+".log")
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Warnf("unable to open log file, logging to stderr: %s", err)
		return
	}
	log.SetOutput(file)
	log.Infof("log to file started for service: %s", service)
}

// CustomLoggerMiddleware logs one line per request with status and timing.
func CustomLoggerMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Printf("%s %s %s %d %s %s",
					r.Method,
					r.RequestURI,
					r.RemoteAddr,
					ww.Status(),
					http.StatusText(ww.Status()),
					time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
