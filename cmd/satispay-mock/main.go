// Command satispay-mock serves the in-memory Satispay emulator, for local
// development against a predictable provider.
package main

import (
	"log"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/satispay-community/satispay-go/internal/sandbox"
	"github.com/satispay-community/satispay-go/pkg/logger"
)

type config struct {
	Addr           string `env:"MOCK_ADDR" envDefault:":8287"`
	SecurityBearer string `env:"MOCK_SECURITY_BEARER" envDefault:"sandbox-bearer"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole     bool   `env:"LOG_CONSOLE" envDefault:"true"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	logger.Setup(logger.Options{Level: cfg.LogLevel, Console: cfg.LogConsole})

	slog.Info("satispay-mock listening", "addr", cfg.Addr)
	engine := sandbox.New(cfg.SecurityBearer).Engine()
	if err := engine.Run(cfg.Addr); err != nil {
		log.Fatalf("Server error: %s", err)
	}
}
