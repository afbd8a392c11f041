package config

import (
	"encoding/json"
	"io/ioutil"
	"math/big"
	"os"

	"github.com/multiversx/mx-launchpad-sc-sub000/common/math"
	"github.com/multiversx/mx-launchpad-sc-sub000/log"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/urfave/cli.v1"
)

type Config struct {
	DataDir   string
	GasLimit  uint64
	Verbosity int
	Launch    *LaunchConfig
}

// LaunchConfig holds the parameters a launch is deployed with. Token amounts are human readable and
// converted to base units with the token's decimals.
type LaunchConfig struct {
	TicketToken         string
	TicketTokenDecimals int32
	TicketPrice         decimal.Decimal

	LaunchpadToken                  string
	LaunchpadTokenDecimals          int32
	LaunchpadTokensPerWinningTicket decimal.Decimal

	NrWinningTickets uint64

	ConfirmationPeriodStart uint64
	WinnerSelectionStart    uint64
	ClaimStart              uint64

	// RequireFullConfirmation grants guaranteed tickets only to users who confirmed every allotted ticket.
	RequireFullConfirmation bool

	UnlockSchedule []UnlockMilestone
}

type UnlockMilestone struct {
	Time       uint64
	Percentage uint64
}

func (c *LaunchConfig) TicketPriceUnits() *big.Int {
	return math.ToBaseUnits(c.TicketPrice, c.TicketTokenDecimals)
}

func (c *LaunchConfig) TokensPerWinningTicketUnits() *big.Int {
	return math.ToBaseUnits(c.LaunchpadTokensPerWinningTicket, c.LaunchpadTokenDecimals)
}

func (c *LaunchConfig) Validate() error {
	if c.TicketToken == "" || c.LaunchpadToken == "" {
		return errors.New("token identifiers are required")
	}
	if c.TicketToken == c.LaunchpadToken {
		return errors.New("ticket token and launchpad token must differ")
	}
	if c.TicketPriceUnits().Sign() <= 0 {
		return errors.New("ticket price must be positive")
	}
	if c.TokensPerWinningTicketUnits().Sign() <= 0 {
		return errors.New("launchpad tokens per winning ticket must be positive")
	}
	if c.NrWinningTickets == 0 {
		return errors.New("number of winning tickets must be positive")
	}
	if c.ConfirmationPeriodStart > c.WinnerSelectionStart || c.WinnerSelectionStart > c.ClaimStart {
		return errors.Errorf("invalid timeline: confirmation %v, winner selection %v, claim %v",
			c.ConfirmationPeriodStart, c.WinnerSelectionStart, c.ClaimStart)
	}
	return nil
}

func MakeConfig(ctx *cli.Context) (*Config, error) {
	cfg := getDefaultConfig()

	if file := ctx.String(CfgFileFlag.Name); file != "" {
		if err := loadConfig(file, cfg); err != nil {
			return nil, err
		}
	}

	applyFlags(ctx, cfg)

	if cfg.Launch == nil {
		return nil, errors.New("launch configuration is missing")
	}
	if err := cfg.Launch.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid launch configuration")
	}
	return cfg, nil
}

func getDefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		GasLimit:  DefaultGasLimit,
		Verbosity: int(log.LvlInfo),
	}
}

func applyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.String(DataDirFlag.Name)
	}
	if ctx.IsSet(GasLimitFlag.Name) {
		cfg.GasLimit = ctx.Uint64(GasLimitFlag.Name)
	}
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
}

func loadConfig(configPath string, conf *Config) error {
	if _, err := os.Stat(configPath); err != nil {
		return errors.Errorf("Config file cannot be found, path: %v", configPath)
	}

	jsonFile, err := os.Open(configPath)
	if err != nil {
		return errors.Errorf("Config file cannot be opened, path: %v", configPath)
	}
	defer jsonFile.Close()

	byteValue, err := ioutil.ReadAll(jsonFile)
	if err != nil {
		return errors.Wrapf(err, "Config file cannot be read, path: %v", configPath)
	}
	if err := json.Unmarshal(byteValue, conf); err != nil {
		return errors.Wrapf(err, "Cannot parse JSON config, path: %v", configPath)
	}
	return nil
}
