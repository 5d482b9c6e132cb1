package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"llmanim/internal/detail"
	"llmanim/internal/highlight"
	"llmanim/internal/keyword"
	"llmanim/internal/segment"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "annotate",
		Short:         "Inspect annotated descriptions and segmented code offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newTreeCmd(),
		newSegmentCmd(),
		newLinkCmd(),
		newHighlightCmd(),
		newDisplayCmd(),
	)
	return root
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <description-file>",
		Short: "Print the two keyword trees of a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), keyword.FromDescription(desc))
		},
	}
}

func newSegmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment <segmented-file>",
		Short: "Print the level-1 and level-2 pieces of $$$/@@@ delimited code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			seg := segment.Parse(raw)
			if !seg.Usable() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d outer and %d inner blocks, below %d/%d\n",
					len(seg.Level1), len(seg.FlatLevel2()), segment.MinLevel1, segment.MinLevel2)
			}
			return writeJSON(cmd.OutOrStdout(), seg)
		},
	}
}

type linkFlags struct {
	description string
	segments    string
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "annotated description file")
	cmd.Flags().StringVar(&f.segments, "segments", "", "$$$/@@@ delimited code file")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("segments")
}

func (f *linkFlags) trees(cmd *cobra.Command) (keyword.Trees, error) {
	desc, err := readInput(cmd, f.description)
	if err != nil {
		return nil, err
	}
	raw, err := readInput(cmd, f.segments)
	if err != nil {
		return nil, err
	}
	return keyword.Link(keyword.FromDescription(desc), segment.Parse(raw)), nil
}

func newLinkCmd() *cobra.Command {
	var f linkFlags
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print keyword trees linked to their code blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := f.trees(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ts)
		},
	}
	f.register(cmd)
	return cmd
}

func newHighlightCmd() *cobra.Command {
	var (
		f    linkFlags
		code string
		word string
	)
	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Mark the code lines highlighted for a keyword",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ts, err := f.trees(cmd)
			if err != nil {
				return err
			}
			src, err := readInput(cmd, code)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range highlight.Mark(src, word, highlight.Select(ts, word)) {
				fmt.Fprintf(out, "%s%s %s\n", mark(m.Level1, "1"), mark(m.Level2, "2"), m.Text)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&code, "code", "", "source file to mark")
	cmd.Flags().StringVar(&word, "word", "", "selected keyword")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("word")
	return cmd
}

func mark(on bool, s string) string {
	if on {
		return s
	}
	return "."
}

func newDisplayCmd() *cobra.Command {
	var show []string
	cmd := &cobra.Command{
		Use:   "display <description-file>",
		Short: "Print the display form of a description and its hidden details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			visible := map[string]bool{}
			for _, e := range show {
				visible[e] = true
			}
			return writeJSON(cmd.OutOrStdout(), detail.Render(desc, visible))
		},
	}
	cmd.Flags().StringArrayVar(&show, "show", nil, "entity whose detail stays visible (repeatable)")
	return cmd
}

// readInput reads path, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
