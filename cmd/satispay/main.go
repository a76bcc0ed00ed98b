// Command satispay is a one-shot CLI around the client library, configured
// entirely from the environment. It prints the API response as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	satispay "github.com/satispay-community/satispay-go"
	"github.com/satispay-community/satispay-go/pkg/logger"
)

type config struct {
	SecurityBearer string        `env:"SATISPAY_SECURITY_BEARER,required"`
	Environment    string        `env:"SATISPAY_ENVIRONMENT" envDefault:"production"`
	Currency       string        `env:"SATISPAY_CURRENCY" envDefault:"EUR"`
	Timeout        time.Duration `env:"SATISPAY_HTTP_TIMEOUT" envDefault:"20s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole     bool          `env:"LOG_CONSOLE" envDefault:"true"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	logger.Setup(logger.Options{Level: cfg.LogLevel, Console: cfg.LogConsole})

	environment := satispay.Production
	if cfg.Environment == "sandbox" || cfg.Environment == "staging" {
		environment = satispay.Sandbox
	}

	client, err := satispay.New(cfg.SecurityBearer,
		satispay.WithEnvironment(environment),
		satispay.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		log.Fatalf("Client error: %s", err)
	}
	defer client.Close()

	ctx := context.Background()
	result, err := run(ctx, client, cfg, os.Args[1:])
	if err != nil {
		log.Fatalf("%s", err)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

func run(ctx context.Context, client *satispay.Client, cfg config, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: satispay <check|create-user|get-user|users|create-charge|get-charge|cancel-charge|charges|refund-charge|get-refund|refunds> [args]")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "check":
		if err := client.CheckAuthorization(ctx); err != nil {
			return nil, err
		}
		return map[string]bool{"authenticated": true}, nil

	case "create-user":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: satispay create-user <phone-number>")
		}
		return client.CreateUser(ctx, rest[0])

	case "get-user":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: satispay get-user <user-id>")
		}
		return client.GetUser(ctx, rest[0])

	case "users":
		return client.GetUsers(ctx, nil)

	case "create-charge":
		if len(rest) != 2 {
			return nil, fmt.Errorf("usage: satispay create-charge <user-id> <amount>")
		}
		amount, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("amount must be an integer in minor units: %w", err)
		}
		return client.CreateCharge(ctx, satispay.CreateChargeParams{
			UserID:   rest[0],
			Currency: cfg.Currency,
			Amount:   amount,
		})

	case "get-charge":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: satispay get-charge <charge-id>")
		}
		return client.GetCharge(ctx, rest[0])

	case "cancel-charge":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: satispay cancel-charge <charge-id>")
		}
		return client.UpdateCharge(ctx, rest[0], satispay.UpdateChargeParams{
			ChargeState: satispay.ChargeStateCanceled,
		})

	case "charges":
		return client.GetCharges(ctx, nil)

	case "refund-charge":
		if len(rest) != 2 {
			return nil, fmt.Errorf("usage: satispay refund-charge <charge-id> <amount>")
		}
		amount, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("amount must be an integer in minor units: %w", err)
		}
		return client.RefundCharge(ctx, satispay.RefundChargeParams{
			ChargeID: rest[0],
			Currency: cfg.Currency,
			Amount:   amount,
		})

	case "get-refund":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: satispay get-refund <refund-id>")
		}
		return client.GetRefund(ctx, rest[0])

	case "refunds":
		return client.GetRefunds(ctx, nil)

	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}
