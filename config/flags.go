package config

import "gopkg.in/urfave/cli.v1"

const (
	DefaultDataDir  = "datadir"
	DefaultGasLimit = uint64(50_000)
)

var (
	CfgFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "JSON configuration file",
	}
	ScenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Usage: "JSON launch scenario (participants, confirmations, seed)",
	}
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "datadir for launch state",
	}
	GasLimitFlag = cli.Uint64Flag{
		Name:  "gaslimit",
		Usage: "Gas limit of every submitted call",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Log verbosity",
		Value: 3,
	}
)
