package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	JupiterBaseURL  string        `envconfig:"JUPITER_BASE_URL" default:"https://quote-api.jup.ag/v6"`
	SlippageBps     int           `envconfig:"JUPITER_SLIPPAGE_BPS" default:"50"`
	BirdeyeBaseURL  string        `envconfig:"BIRDEYE_BASE_URL" default:"https://public-api.birdeye.so"`
	BirdeyeAPIKey   string        `envconfig:"BIRDEYE_API_KEY"`
	PumpPortalWSURL string        `envconfig:"PUMPPORTAL_WS_URL" default:"wss://pumpportal.fun/api/data"`
	SolanaRPCURL    string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	HTTPTimeout     time.Duration `envconfig:"CONNECTOR_HTTP_TIMEOUT" default:"15s"`
	ConfirmTimeout  time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s"`
	ConfirmInterval time.Duration `envconfig:"CONFIRM_POLL_INTERVAL" default:"500ms"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
