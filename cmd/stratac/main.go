package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sbl8/strata/allocator"
	"github.com/sbl8/strata/compiler"
	"github.com/sbl8/strata/logutil"
	"github.com/sbl8/strata/schedule"
	"github.com/sbl8/strata/target"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "stratac [flags] <model.sgr>",
		Short:        "Schedule a tensor graph and print its memory plan",
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}
	rootCmd.Flags().StringP("output", "o", "", "Write the CBOR schedule artifact to a file")
	rootCmd.Flags().Int("data-capacity", 0, "Bound the scratch data region in bytes (0 = unbounded)")
	rootCmd.Flags().Int("align", allocator.DefaultAlignment, "Allocation alignment in bytes")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logutil.NewLogger(os.Stderr, level))

	g, err := compiler.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	outputs := g.Outputs()
	if len(outputs) == 0 {
		return fmt.Errorf("%s: graph has no output nodes", args[0])
	}

	align, _ := cmd.Flags().GetInt("align")
	capacity, _ := cmd.Flags().GetInt("data-capacity")
	t := target.NewCPU(target.WithAlignment(align), target.WithDataCapacity(capacity))

	result, err := schedule.New(t, outputs).Schedule()
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	names := make([]string, 0, len(result.ComputeSequence))
	for _, n := range result.ComputeSequence {
		names = append(names, n.Name())
	}
	fmt.Printf("compute sequence: %s\n\n", strings.Join(names, " -> "))

	art := result.Artifact()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Connector", "Region", "Type", "Shape", "Parent", "Strides", "Start", "Size"})
	for _, key := range art.Keys() {
		a := art.Allocations[key]
		table.Append([]string{
			key,
			a.MemoryLocation,
			a.Type,
			fmt.Sprint(a.Shape),
			fmt.Sprint(a.ParentShape),
			fmt.Sprint(a.Strides),
			fmt.Sprintf("%d", a.Start),
			fmt.Sprintf("%d", a.Size),
		})
	}
	table.Render()

	fmt.Println()
	for _, loc := range schedule.Locations() {
		fmt.Printf("%-6s peak %d bytes\n", loc, result.MaxUsages[loc])
	}

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := art.Encode(f); err != nil {
			return fmt.Errorf("writing artifact: %w", err)
		}
		slog.Info("artifact written", "path", out)
	}
	return nil
}
