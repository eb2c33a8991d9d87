// Package driver feeds one command stream to independently configured
// instances of all four allocation engines and aggregates comparative
// statistics. The engines never interact; every command fans out to each of
// them and a failure on one leaves the others untouched.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/file_systems/common"
	"github.com/dargueta/blocksim/file_systems/contiguous"
	"github.com/dargueta/blocksim/file_systems/indexed"
	"github.com/dargueta/blocksim/file_systems/linked"
	"github.com/dargueta/blocksim/file_systems/modcontig"
)

// DefaultTotalBlocks is the device capacity used when the configuration
// doesn't specify one.
const DefaultTotalBlocks = 500

// Config controls how a [Driver] builds its four engines.
type Config struct {
	// TotalBlocks is the capacity of every simulated device. Zero means
	// DefaultTotalBlocks.
	TotalBlocks uint

	// ContiguousStrategy is the hole-search strategy of the plain contiguous
	// engine; ModifiedStrategy is the strategy of the modified-contiguous
	// engine, used both for initial runs and overflow runs.
	ContiguousStrategy common.SearchStrategy
	ModifiedStrategy   common.SearchStrategy

	// Log receives the per-command trace. Nil discards it.
	Log io.Writer

	// Verbose adds one trace line per block touched, mirroring each engine's
	// read/write events.
	Verbose bool
}

// tally accumulates the cost of the read/write commands an engine completed.
// Commands that didn't execute (sentinel access count) are never added.
type tally struct {
	completedOps  uint
	totalAccesses uint
}

// Driver dispatches a command stream to all four engines.
type Driver struct {
	engines []blocksim.FileSystem
	tallies []tally
	logger  *log.Logger
	verbose bool
}

// New builds a driver with one instance of each engine, all sized to the
// same capacity.
func New(cfg Config) *Driver {
	totalBlocks := cfg.TotalBlocks
	if totalBlocks == 0 {
		totalBlocks = DefaultTotalBlocks
	}
	logOutput := cfg.Log
	if logOutput == nil {
		logOutput = io.Discard
	}

	engines := []blocksim.FileSystem{
		contiguous.New(totalBlocks, cfg.ContiguousStrategy),
		linked.New(totalBlocks),
		indexed.New(totalBlocks),
		modcontig.New(totalBlocks, cfg.ModifiedStrategy),
	}
	return &Driver{
		engines: engines,
		tallies: make([]tally, len(engines)),
		logger:  log.New(logOutput, "", 0),
		verbose: cfg.Verbose,
	}
}

// Engines returns the driver's engines in reporting order.
func (d *Driver) Engines() []blocksim.FileSystem {
	return d.engines
}

// Run consumes a query stream, one whitespace-separated command per line:
//
//	CREATE <name> <size>
//	READ <name> <size> <offset>
//	WRITE <name> <size> <offset>
//	DELETE_FILE <name>
//
// Malformed lines and unrecognized operations are reported to the log and
// skipped; the stream always continues. The returned error reflects only
// problems reading the stream itself.
func (d *Driver) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := d.dispatch(fields); err != nil {
			d.logger.Printf("line %d: %s", lineNumber, err)
		}
	}
	return scanner.Err()
}

// dispatch executes one command on every engine. It returns an error only
// for lines that can't be dispatched at all (unknown operation, missing or
// non-numeric fields); per-engine failures are logged and tallied as
// not-executed instead.
func (d *Driver) dispatch(fields []string) error {
	operation := fields[0]
	switch operation {
	case "CREATE":
		if len(fields) != 3 {
			return badCommand(fields, "want CREATE <name> <size>")
		}
		size, err := parseCount(fields[2])
		if err != nil {
			return err
		}
		d.createAll(fields[1], size)
	case "READ", "WRITE":
		if len(fields) != 4 {
			return badCommand(
				fields, fmt.Sprintf("want %s <name> <size> <offset>", operation))
		}
		size, err := parseCount(fields[2])
		if err != nil {
			return err
		}
		offset, err := parseCount(fields[3])
		if err != nil {
			return err
		}
		d.transferAll(operation, fields[1], size, offset)
	case "DELETE_FILE":
		if len(fields) != 2 {
			return badCommand(fields, "want DELETE_FILE <name>")
		}
		d.deleteAll(fields[1])
	default:
		return blocksim.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("invalid operation %q", operation))
	}
	return nil
}

func (d *Driver) createAll(name string, size uint) {
	for _, engine := range d.engines {
		report, err := engine.Create(name, size)
		if err != nil {
			d.logger.Printf("%s: create %q: %s", engine.Name(), name, err)
			continue
		}
		if len(report.Allocated) > 0 {
			d.logger.Printf(
				"%s: created %q with starting block %d",
				engine.Name(), name, report.Allocated[0])
		} else {
			d.logger.Printf("%s: created empty file %q", engine.Name(), name)
		}
	}
}

func (d *Driver) transferAll(operation, name string, size, offset uint) {
	verb := "read"
	if operation == "WRITE" {
		verb = "write"
	}

	for i, engine := range d.engines {
		var report blocksim.Report
		var err error
		if operation == "WRITE" {
			report, err = engine.Write(name, size, offset)
		} else {
			report, err = engine.Read(name, size, offset)
		}
		if err != nil {
			d.logger.Printf("%s: %s %q: %s", engine.Name(), verb, name, err)
			continue
		}

		d.tallies[i].completedOps++
		d.tallies[i].totalAccesses += report.Accesses

		if d.verbose {
			for _, block := range report.Allocated {
				d.logger.Printf("%s: allocating block %d", engine.Name(), block)
			}
			for _, block := range report.Blocks {
				d.logger.Printf("%s: %sing block %d", engine.Name(), verb, block)
			}
		}
		d.logger.Printf(
			"%s: %s %q: %d blocks, %d accesses",
			engine.Name(), verb, name, len(report.Blocks), report.Accesses)
	}
}

func (d *Driver) deleteAll(name string) {
	for _, engine := range d.engines {
		if err := engine.DeleteFile(name); err != nil {
			d.logger.Printf("%s: delete %q: %s", engine.Name(), name, err)
			continue
		}
		d.logger.Printf("%s: deleted %q", engine.Name(), name)
	}
}

func badCommand(fields []string, want string) error {
	return blocksim.ErrInvalidArgument.WithMessage(
		fmt.Sprintf("malformed %s command: %s", fields[0], want))
}

func parseCount(token string) (uint, error) {
	value, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, blocksim.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q is not a valid block count", token))
	}
	return uint(value), nil
}
