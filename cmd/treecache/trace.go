package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/treecache/internal/tile"
	"github.com/discochess/treecache/internal/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Record and inspect camera traces",
}

var traceRecordCmd = &cobra.Command{
	Use:   "record NAME",
	Short: "Generate a synthetic camera trace and save it to the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceRecord,
}

var traceListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the traces in the store",
	Args:    cobra.NoArgs,
	RunE:    runTraceList,
}

var traceShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Summarize a stored trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

var genParams = trace.DefaultParams()

// addGenerateFlags registers the synthetic trace parameters on cmd.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&genParams.Frames, "frames", genParams.Frames, "number of frames to generate")
	cmd.Flags().Uint8Var(&genParams.MaxLevel, "max-level", genParams.MaxLevel, "deepest tile level the camera reaches")
	cmd.Flags().IntVar(&genParams.Radius, "radius", genParams.Radius, "visible tiles around the focus in each direction")
	cmd.Flags().Float64Var(&genParams.Pan, "pan", genParams.Pan, "camera movement per frame, in tiles")
	cmd.Flags().Float64Var(&genParams.Zoom, "zoom", genParams.Zoom, "standard deviation of the per-frame level change")
	cmd.Flags().Uint64Var(&genParams.Seed, "seed", genParams.Seed, "random seed")
}

func init() {
	addGenerateFlags(traceRecordCmd)
	traceCmd.AddCommand(traceRecordCmd, traceListCmd, traceShowCmd)
	rootCmd.AddCommand(traceCmd)
}

func runTraceRecord(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	frames := trace.Generate(genParams)
	if err := st.WriteTrace(cmd.Context(), args[0], frames); err != nil {
		return fmt.Errorf("saving trace: %w", err)
	}

	log.Info("trace recorded",
		zap.String("name", args[0]),
		zap.String("store", storeLocation),
		zap.Int("frames", len(frames)),
		zap.Uint64("seed", genParams.Seed),
	)
	return nil
}

func runTraceList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing traces: %w", err)
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	frames, err := st.ReadTrace(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading trace %s: %w", args[0], err)
	}

	s := summarize(frames)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Trace:          %s\n", args[0])
	fmt.Fprintf(out, "Frames:         %d\n", s.frames)
	fmt.Fprintf(out, "Tile requests:  %d\n", s.requests)
	fmt.Fprintf(out, "Distinct tiles: %d\n", s.distinct)
	fmt.Fprintln(out, "Frames by level:")
	for _, level := range slices.Sorted(maps.Keys(s.levels)) {
		fmt.Fprintf(out, "  %2d: %d\n", level, s.levels[level])
	}
	return nil
}

type traceSummary struct {
	frames   int
	requests int
	distinct int
	levels   map[uint8]int // frames by zoom level
}

func summarize(frames []trace.Frame) traceSummary {
	s := traceSummary{frames: len(frames), levels: make(map[uint8]int)}
	seen := make(map[tile.ID]struct{})
	for _, f := range frames {
		s.requests += len(f.Visible)
		for _, id := range f.Visible {
			seen[id] = struct{}{}
		}
		if len(f.Visible) > 0 {
			s.levels[f.Visible[0].Level]++
		}
	}
	s.distinct = len(seen)
	return s
}
