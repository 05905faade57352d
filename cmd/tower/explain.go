package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tower/internal/diag"
	"tower/internal/diagfmt"
	"tower/internal/driver"
	"tower/internal/project"
	"tower/internal/source"
	"tower/internal/trace"
	"tower/internal/world"
)

var explainCmd = &cobra.Command{
	Use:   "explain [flags] <world.toml> <call-id>",
	Short: "Resolve one call and show every probed tower level",
	Long: `Resolve a single call of a world file with debug tracing and print the
result followed by the trace: every probed group, the level it asked and each
candidate with its applicability.`,
	Args: cobra.ExactArgs(2),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringSlice("hides-members", nil, "names whose extensions win over members (replaces the manifest list)")
	explainCmd.Flags().String("dump-format", "text", "trace dump format (text|ndjson)")
	explainCmd.Flags().Int("events", 4096, "max trace events kept")
	explainCmd.Flags().String("depth", "candidate", "deepest trace scope to print (call|level|candidate)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	path, callID := args[0], args[1]

	dumpFormatStr, err := cmd.Flags().GetString("dump-format")
	if err != nil {
		return fmt.Errorf("failed to get dump-format flag: %w", err)
	}
	dumpFormat, err := trace.ParseFormat(dumpFormatStr)
	if err != nil {
		return err
	}
	if dumpFormat == trace.FormatAuto {
		dumpFormat = trace.FormatText
	}
	events, err := cmd.Flags().GetInt("events")
	if err != nil {
		return fmt.Errorf("failed to get events flag: %w", err)
	}
	depthStr, err := cmd.Flags().GetString("depth")
	if err != nil {
		return fmt.Errorf("failed to get depth flag: %w", err)
	}
	depth, err := trace.ParseScope(depthStr)
	if err != nil {
		return err
	}
	opts := driver.Options{}
	if currentManifest != nil {
		opts.HidesMembers = currentManifest.Config.Resolve.HidesMembers
	} else {
		opts.HidesMembers = project.Default().Resolve.HidesMembers
	}
	if cmd.Flags().Changed("hides-members") {
		if opts.HidesMembers, err = cmd.Flags().GetStringSlice("hides-members"); err != nil {
			return fmt.Errorf("failed to get hides-members flag: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fs := source.NewFileSet()
	bag := diag.NewBag(100)
	w, err := world.Load(fs, path, diag.BagReporter{Bag: bag})
	if err != nil {
		bag.Sort()
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{Color: !color.NoColor, ShowNotes: true})
		if bag.Len() == 0 {
			return err
		}
		return errFailed
	}
	call, ok := w.Call(callID)
	if !ok {
		ids := make([]string, 0, len(w.Calls))
		for _, c := range w.Calls {
			ids = append(ids, c.ID)
		}
		return fmt.Errorf("%s: no call %q (calls: %s)", path, callID, strings.Join(ids, ", "))
	}

	ring := trace.NewRingTracer(events, trace.LevelDebug)
	var tracer trace.Tracer = ring
	if outer := trace.FromContext(cmd.Context()); outer.Enabled() {
		tracer = trace.NewMultiTracer(trace.LevelDebug, outer, ring)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)

	res := driver.ResolveCall(ctx, w, call, opts)
	printExplanation(out, &res)

	header := "trace:"
	if dropped := ring.Dropped(); dropped > 0 {
		header = fmt.Sprintf("trace (%d earlier events dropped, raise --events):", dropped)
	}
	fmt.Fprintln(out, headerColor.Sprint(header))
	if _, err := ring.Dump(out, dumpFormat, depth); err != nil {
		return fmt.Errorf("failed to dump trace: %w", err)
	}
	if res.Failed() {
		return errFailed
	}
	return nil
}

// printExplanation prints the outcome of one call with its candidates.
func printExplanation(w io.Writer, res *driver.CallResult) {
	fmt.Fprintln(w, formatCall(res, len(res.ID)))
	fmt.Fprintf(w, "  applicability: %s, %d candidates consumed\n", res.Applicability, res.Consumed)
	for _, m := range res.Mismatch {
		fmt.Fprintf(w, "  %s\n", failColor.Sprint(m))
	}
	for _, c := range res.Candidates {
		fmt.Fprintf(w, "  candidate %s\n", c.Signature)
		if c.Dispatch != "" {
			fmt.Fprintf(w, "    dispatch receiver: %s\n", c.Dispatch)
		}
		if c.Extension != "" {
			fmt.Fprintf(w, "    extension receiver: %s\n", c.Extension)
		}
		fmt.Fprintf(w, "    explicit receiver: %s\n", c.Kind)
		for _, d := range c.Defects {
			fmt.Fprintf(w, "    %s %s\n", dimColor.Sprintf("[%s]", d.ID), d.Message)
		}
	}
}
