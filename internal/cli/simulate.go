package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/facility"
	"github.com/greenvvay/Parking/internal/metrics"
	"github.com/greenvvay/Parking/internal/tariffs"
)

type simulateOptions struct {
	InGates  int
	OutGates int
	Capacity int
	Vehicles int
	Rounds   int
	Stay     time.Duration
	Tariff   string
	Start    string
}

func NewSimulateCommand() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive an in-memory facility from concurrent gates",
		Long: `Drive an in-memory facility from concurrent gates.

Every vehicle gets its own goroutine, enters through gate (i mod in-gates),
pays, and leaves through gate (i mod out-gates), for the given number of
rounds. The clock is simulated, so billing is deterministic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.InGates, "in-gates", 10, "number of entry gates")
	cmd.Flags().IntVar(&opts.OutGates, "out-gates", 10, "number of exit gates")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 10, "parking spaces")
	cmd.Flags().IntVar(&opts.Vehicles, "vehicles", 20, "concurrent vehicles")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 3, "visits per vehicle")
	cmd.Flags().DurationVar(&opts.Stay, "stay", 90*time.Minute, "simulated time advanced after the run before billing")
	cmd.Flags().StringVar(&opts.Tariff, "tariff", "", "YAML tariff file (default: 1 per minute)")
	cmd.Flags().StringVar(&opts.Start, "start", "2024-01-01T10:00:00Z", "simulated start time, RFC 3339")

	return cmd
}

type simulationResult struct {
	Accepted  map[domain.EventKind]int
	Refused   map[string]int
	Revenue   domain.Price
	Available int
	LogSize   int
}

func runSimulate(out io.Writer, opts *simulateOptions) error {
	if opts.Rounds <= 0 {
		return errNoRounds
	}
	start, err := time.Parse(time.RFC3339, opts.Start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	tariff := domain.UniformTariff(1)
	if opts.Tariff != "" {
		if tariff, err = tariffs.Load(opts.Tariff); err != nil {
			return err
		}
	}

	clock := facility.NewFixedClock(start)
	f, err := facility.New(opts.InGates, opts.OutGates, opts.Capacity, facility.WithClock(clock))
	if err != nil {
		return err
	}
	if err := f.SetupTariff(tariff); err != nil {
		return err
	}

	res := simulate(f, clock, opts)

	fmt.Fprintf(out, "entries accepted: %d\n", res.Accepted[domain.EventEnter])
	fmt.Fprintf(out, "exits accepted:   %d\n", res.Accepted[domain.EventExit])
	reasons := make([]string, 0, len(res.Refused))
	for reason := range res.Refused {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(out, "refused (%s): %d\n", reason, res.Refused[reason])
	}
	fmt.Fprintf(out, "revenue:          %.2f\n", float64(res.Revenue))
	fmt.Fprintf(out, "available spaces: %d/%d\n", res.Available, f.Capacity())
	fmt.Fprintf(out, "log entries:      %d\n", res.LogSize)
	return nil
}

// simulate runs every vehicle concurrently. Vehicles that got in stay parked
// until all goroutines are done, then the clock moves by opts.Stay and each
// one pays and leaves, so the fee reflects a real stay.
func simulate(f *facility.Facility, clock *facility.FixedClock, opts *simulateOptions) simulationResult {
	var (
		mu  sync.Mutex
		res = simulationResult{
			Accepted: make(map[domain.EventKind]int),
			Refused:  make(map[string]int),
		}
		wg sync.WaitGroup
	)
	record := func(kind domain.EventKind, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Refused[metrics.Reason(err)]++
			return
		}
		res.Accepted[kind]++
	}

	type parked struct {
		vehicle domain.VehicleInfo
		ticket  *domain.Ticket
		gate    int
	}
	var (
		lastMu sync.Mutex
		last   []parked
	)

	for i := 0; i < opts.Vehicles; i++ {
		vehicle := domain.VehicleInfo{ID: fmt.Sprintf("SIM%04d", i), Class: domain.ClassCompact}
		inGate, outGate := gateFor(i, opts.InGates), gateFor(i, opts.OutGates)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < opts.Rounds; round++ {
				ticket, err := f.TryEnter(vehicle, inGate, time.Time{})
				record(domain.EventEnter, err)
				if err != nil {
					continue
				}
				if round == opts.Rounds-1 {
					lastMu.Lock()
					last = append(last, parked{vehicle: vehicle, ticket: ticket, gate: outGate})
					lastMu.Unlock()
					return
				}
				record(domain.EventExit, f.TryExit(vehicle, outGate, time.Time{}, ticket))
			}
		}()
	}
	wg.Wait()

	clock.Advance(opts.Stay)
	for _, p := range last {
		fee := f.Payment(p.ticket)
		if f.ProcessPayment(p.ticket, fee) {
			res.Revenue += fee
		}
		record(domain.EventExit, f.TryExit(p.vehicle, p.gate, time.Time{}, p.ticket))
	}

	res.Available = f.AvailableSpaces()
	res.LogSize = len(f.AllLogs())
	return res
}

// gateFor spreads vehicles over gates; -1 (always invalid) when there are none.
func gateFor(i, gates int) int {
	if gates <= 0 {
		return -1
	}
	return i % gates
}

var errNoRounds = errors.New("rounds must be positive")
