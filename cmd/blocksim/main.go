package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dargueta/blocksim/driver"
	"github.com/dargueta/blocksim/file_systems/common"
	"github.com/urfave/cli/v2"
)

func main() {
	cli := cli.App{
		Usage: "Compare file allocation strategies on a simulated block device",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Execute a query file against all four allocators",
				Action:    runQueryFile,
				ArgsUsage: "QUERY_FILE",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "blocks",
						Usage: "total blocks on each simulated device",
						Value: driver.DefaultTotalBlocks,
					},
					&cli.StringFlag{
						Name:  "contiguous-strategy",
						Usage: "hole search for the contiguous allocator: first-fit, best-fit, worst-fit or next-fit",
						Value: "best-fit",
					},
					&cli.StringFlag{
						Name:  "modified-strategy",
						Usage: "hole search for the modified-contiguous allocator",
						Value: "first-fit",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "log every block access",
					},
					&cli.BoolFlag{
						Name:  "show-map",
						Usage: "print each allocator's final block map",
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "write the summary to `FILE` as CSV",
					},
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "write a binary dump of the final block maps to `FILE`",
					},
				},
			},
		},
	}

	err := cli.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func runQueryFile(context *cli.Context) error {
	if context.NArg() != 1 {
		return fmt.Errorf("expected exactly one query file, got %d arguments", context.NArg())
	}

	contiguousStrategy, err := common.ParseSearchStrategy(
		context.String("contiguous-strategy"))
	if err != nil {
		return err
	}
	modifiedStrategy, err := common.ParseSearchStrategy(
		context.String("modified-strategy"))
	if err != nil {
		return err
	}

	queryFile, err := os.Open(context.Args().First())
	if err != nil {
		return fmt.Errorf("failed to open query file: %w", err)
	}
	defer queryFile.Close()

	sim := driver.New(driver.Config{
		TotalBlocks:        context.Uint("blocks"),
		ContiguousStrategy: contiguousStrategy,
		ModifiedStrategy:   modifiedStrategy,
		Log:                os.Stdout,
		Verbose:            context.Bool("verbose"),
	})

	if err := sim.Run(queryFile); err != nil {
		return fmt.Errorf("failed reading query file: %w", err)
	}

	fmt.Println()
	if err := sim.WriteReport(os.Stdout); err != nil {
		return err
	}

	if context.Bool("show-map") {
		fmt.Println()
		for _, engine := range sim.Engines() {
			rendered, err := driver.RenderMap(engine)
			if err != nil {
				return err
			}
			fmt.Printf("%s:\n%s\n", engine.Name(), rendered)
		}
	}

	if path := context.String("csv"); path != "" {
		err := writeToFile(path, func(f *os.File) error {
			return sim.WriteSummaryCSV(f)
		})
		if err != nil {
			return fmt.Errorf("failed writing summary CSV: %w", err)
		}
	}

	if path := context.String("snapshot"); path != "" {
		err := writeToFile(path, func(f *os.File) error {
			return sim.WriteSnapshot(f)
		})
		if err != nil {
			return fmt.Errorf("failed writing snapshot: %w", err)
		}
	}
	return nil
}

func writeToFile(path string, write func(*os.File) error) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(outFile); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
