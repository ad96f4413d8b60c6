package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var profilesFile string

func init() {
	cmd := newProfilesCmd()
	cmd.Flags().StringVar(&profilesFile, "profile", "", "TOML profile file to apply over the built-in profiles")
	rootCmd.AddCommand(cmd)
}

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List allocator presets and per-class profiles",
		Long: `The profiles command prints the named allocator presets and the
configuration used for each trace class.

Example:
  heapctl profiles
  heapctl profiles --profile tuned.toml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles()
		},
	}
	return cmd
}

type profileRow struct {
	Class        string `json:"class"`
	Name         string `json:"name"`
	NumBins      int    `json:"num_bins"`
	MinBlockSize int    `json:"min_block_size"`
	SplitSlack   int    `json:"split_slack"`
	MaxOversize  int    `json:"max_oversize"`
	MaxDiff      int    `json:"measured_max_diff,omitempty"`
	GrowInPlace  bool   `json:"grow_in_place"`
}

func newProfileRow(class string, cfg alloc.Config, maxDiff int) profileRow {
	return profileRow{
		Class:        class,
		Name:         cfg.Name,
		NumBins:      cfg.NumBins,
		MinBlockSize: cfg.MinBlockSize,
		SplitSlack:   cfg.SplitSlack,
		MaxOversize:  cfg.MaxOversize,
		MaxDiff:      maxDiff,
		GrowInPlace:  cfg.GrowInPlace,
	}
}

func runProfiles() error {
	profiles, err := loadProfiles(profilesFile)
	if err != nil {
		return err
	}

	var rows []profileRow
	for _, cfg := range alloc.Presets() {
		rows = append(rows, newProfileRow("preset", cfg, 0))
	}
	for _, e := range profiles.Entries() {
		class := "default"
		if e.Class >= 0 {
			class = fmt.Sprintf("c%d", e.Class)
		}
		rows = append(rows, newProfileRow(class, e.Config, e.MaxDiff))
	}

	if jsonOut {
		return printJSON(rows)
	}
	if quiet {
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "class\tname\tbins\tmin block\tsplit slack\tmax oversize\tmeasured max diff\tgrow\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%t\n",
			r.Class, r.Name, r.NumBins, r.MinBlockSize, r.SplitSlack, r.MaxOversize, r.MaxDiff, r.GrowInPlace)
	}
	return tw.Flush()
}
