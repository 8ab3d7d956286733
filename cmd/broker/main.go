package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/quantra-lab/contango/internal/broker"
	"github.com/quantra-lab/contango/internal/broker/contfut"
	"github.com/quantra-lab/contango/internal/cache"
	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/config"
	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/logger"
	"github.com/quantra-lab/contango/internal/provider"
	"github.com/quantra-lab/contango/internal/types"
)

// validateAction parses the config file and reports whether it is usable.
func validateAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: ok (%d providers, %d instruments, %d expiration rules)\n",
		path, len(cfg.Providers), len(cfg.Instruments), len(cfg.ExpirationRules))

	return nil
}

// demoAction wires the whole broker against a simulated provider, runs one
// continuous-future request and one front-contract query, and prints the
// results.
func demoAction(ctx context.Context, cmd *cli.Command) error {
	zlog, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	dir := directory.NewInMemoryDirectory()
	ids := broker.NewIDGenerator()
	engine := contfut.NewEngine(dir, calendar.NewWeekdayCalendar(), zlog, ids.Next)
	store := cache.NewMemoryCache()

	b := broker.New(provider.NewRegistry(), store, engine, zlog, ids)
	store.OnReply(b.HandleCacheReply)

	sim := provider.NewSimProvider("sim")
	if err := sim.Connect(); err != nil {
		return err
	}

	b.RegisterProvider(sim)

	if path := cmd.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		for _, ic := range cfg.Instruments {
			dir.Add(ic.Instrument())
		}

		for underlying, rule := range cfg.ExpirationRules {
			engine.RegisterExpirationRule(underlying, rule)
		}
	}

	june := dir.Add(types.Instrument{
		Symbol:           "CLM2",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeFuture,
		Expiration:       optional.Some(time.Date(2012, time.June, 20, 0, 0, 0, 0, time.UTC)),
		DataSourceName:   "sim",
	})
	july := dir.Add(types.Instrument{
		Symbol:           "CLN2",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeFuture,
		Expiration:       optional.Some(time.Date(2012, time.July, 18, 0, 0, 0, 0, time.UTC)),
		DataSourceName:   "sim",
	})

	engine.RegisterExpirationRule("CL", calendar.ExpirationRule{
		Kind: calendar.DayRuleFixedDay,
		Day:  20,
	})

	rng := rand.New(rand.NewSource(int64(cmd.Int("seed"))))
	sim.Load(june.IDOrZero(), types.Frequency1d, demoBars(rng, june.IDOrZero(),
		time.Date(2012, time.April, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2012, time.June, 20, 0, 0, 0, 0, time.UTC), 100))
	sim.Load(july.IDOrZero(), types.Frequency1d, demoBars(rng, july.IDOrZero(),
		time.Date(2012, time.April, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2012, time.July, 18, 0, 0, 0, 0, time.UTC), 103))

	continuous := types.Instrument{
		ID:               optional.Some[int64](100),
		Symbol:           "@CL",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeContinuousFuture,
		DataSourceName:   "sim",
		ContFut: optional.Some(types.ContinuousFutureSpec{
			Month:          1,
			RolloverType:   types.RolloverTypeTime,
			RolloverDays:   2,
			AdjustmentMode: types.AdjustmentModeDifference,
		}),
	}

	arrived := make(chan types.DataArrived, 1)
	fronts := make(chan types.FrontContractFound, 1)

	b.Notifications().SubscribeDataArrived(func(n types.DataArrived) { arrived <- n })
	b.Notifications().SubscribeFrontContract(func(n types.FrontContractFound) { fronts <- n })
	b.Notifications().SubscribeErrors(func(n types.BrokerError) {
		fmt.Printf("broker error %d: %s\n", n.Code, n.Message)
	})

	id, err := b.RequestHistoricalData(types.HistoricalDataRequest{
		Instrument: continuous,
		Frequency:  types.Frequency1d,
		StartDate:  time.Date(2012, time.May, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2012, time.July, 6, 0, 0, 0, 0, time.UTC),
		Location:   types.DataLocationBoth,
	})
	if err != nil {
		return err
	}

	select {
	case n := <-arrived:
		fmt.Printf("request %d: %d stitched bars\n", id, len(n.Bars))

		if len(n.Bars) > 0 {
			first, last := n.Bars[0], n.Bars[len(n.Bars)-1]
			fmt.Printf("  %s  close %s  (%s)\n", first.Time.Format("2006-01-02"), first.Close, symbolOf(dir, first))
			fmt.Printf("  %s  close %s  (%s)\n", last.Time.Format("2006-01-02"), last.Close, symbolOf(dir, last))
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	asOf := time.Date(2012, time.June, 12, 0, 0, 0, 0, time.UTC)

	if _, err := b.RequestFrontContract(continuous, asOf); err != nil {
		return err
	}

	select {
	case n := <-fronts:
		if n.Instrument.IsSome() {
			fmt.Printf("front contract as of %s: %s\n", asOf.Format("2006-01-02"), n.Instrument.Unwrap().Symbol)
		} else {
			fmt.Printf("front contract as of %s: none\n", asOf.Format("2006-01-02"))
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// demoBars builds a weekday random-walk series around the given price level.
func demoBars(rng *rand.Rand, instrumentID int64, start, end time.Time, level float64) []types.Bar {
	var bars []types.Bar

	price := level

	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			continue
		}

		open := price
		price += (rng.Float64() - 0.5) * level * 0.01
		high := open
		low := price

		if price > open {
			high, low = price, open
		}

		bars = append(bars, types.Bar{
			Open:         decimal.NewFromFloat(open).Round(2),
			High:         decimal.NewFromFloat(high).Round(2),
			Low:          decimal.NewFromFloat(low).Round(2),
			Close:        decimal.NewFromFloat(price).Round(2),
			Volume:       decimalOption(float64(1000 + rng.Intn(500))),
			OpenInterest: decimalOption(float64(5000 + rng.Intn(2000))),
			Time:         t,
			InstrumentID: instrumentID,
			Frequency:    types.Frequency1d,
		})
	}

	return bars
}

func decimalOption(v float64) optional.Option[decimal.Decimal] {
	return optional.Some(decimal.NewFromFloat(v))
}

func symbolOf(dir *directory.InMemoryDirectory, bar types.Bar) string {
	matches := dir.Find(directory.Filter{Predicate: func(c types.Instrument) bool {
		return c.IDOrZero() == bar.InstrumentID
	}})
	if len(matches) == 0 {
		return "?"
	}

	return matches[0].Symbol
}

func main() {
	cmd := &cli.Command{
		Name:  "contango",
		Usage: "Historical price-series broker with continuous-future construction",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Check a configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the yaml configuration file",
						Required: true,
					},
				},
				Action: validateAction,
			},
			{
				Name:  "demo",
				Usage: "Run a scripted continuous-future request against a simulated provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Optional yaml configuration to seed the directory from",
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Seed for the generated demo data",
						Value: 42,
					},
				},
				Action: demoAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
