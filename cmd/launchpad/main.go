package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/multiversx/mx-launchpad-sc-sub000/config"
	"github.com/multiversx/mx-launchpad-sc-sub000/log"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/embedded"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	dbm "github.com/tendermint/tm-db"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "launchpad"
	app.Usage = "Replays a launchpad lottery against a local data dir"

	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "Deploy a launch, select winners with bounded calls and claim for every participant",
			Flags: []cli.Flag{
				config.CfgFileFlag,
				config.ScenarioFlag,
				config.DataDirFlag,
				config.GasLimitFlag,
				config.VerbosityFlag,
			},
			Action: run,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.MakeConfig(ctx)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.NewTerminalHandler(log.Lvl(cfg.Verbosity), os.Stderr, runtime.GOOS != "windows"))

	if !ctx.IsSet(config.ScenarioFlag.Name) {
		return errors.New("scenario option is required")
	}
	scenario, err := loadScenario(ctx.String(config.ScenarioFlag.Name))
	if err != nil {
		return err
	}

	db, err := OpenDatabase(cfg.DataDir, "launchpad", 16, 16)
	if err != nil {
		return errors.Wrapf(err, "failed to open database, path: %v", cfg.DataDir)
	}
	defer db.Close()

	report, err := newRunner(db, embedded.ParamsFromConfig(cfg.Launch), scenario, cfg.GasLimit).Run()
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)
	return nil
}

func OpenDatabase(datadir string, name string, cache int, handles int) (dbm.DB, error) {
	return dbm.NewGoLevelDBWithOpts(name, datadir, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
}

func printReport(w io.Writer, report *Report) {
	fmt.Fprintf(w, "contract: %v\n", report.Contract.Hex())
	fmt.Fprintf(w, "winning tickets: %v\n", report.WinningTicketCount)

	methods := make([]string, 0, len(report.Calls))
	for method := range report.Calls {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	for _, method := range methods {
		fmt.Fprintf(w, "calls %v: %v\n", method, report.Calls[method])
	}

	for _, p := range report.Participants {
		fmt.Fprintf(w, "%v winning=%v claimed=%v refunded=%v", p.Address.Hex(), p.WinningTickets, p.Claimed, p.Refunded)
		if p.Blacklisted {
			fmt.Fprint(w, " blacklisted")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "owner ticket payment: %v\n", report.OwnerTicketPayment)
	fmt.Fprintf(w, "owner launchpad tokens: %v\n", report.OwnerLaunchTokens)
}
