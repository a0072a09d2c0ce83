package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	UserID     string        `envconfig:"USER_ID"`
	LoopPeriod time.Duration `envconfig:"LOOP_PERIOD" default:"30s"`
	LeaseTTL   time.Duration `envconfig:"CYCLE_LEASE_TTL" default:"2m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
