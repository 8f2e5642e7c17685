package main

import (
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
	"github.com/phoenixbound/m3table"
	"github.com/spf13/cobra"
)

// Commands take positional arguments only; cobra's flag parsing and its
// default help command are turned off so that -h, --help and help behave
// like any other argument.
func newRootCmd(prog string, verbose bool) *cobra.Command {
	root := &cobra.Command{
		Use:   prog,
		Short: "Pack and unpack offset tables",
		Long: `m3tabletool converts between offset tables and directories of numbered files.

An unpacked table holds one file per slot: {i}.bin with the slot's bytes,
or an empty {i}.ignore for an absent slot.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(_ *cobra.Command, args []string) error {
			return dispatchUnknown(args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{
		Use:                "help",
		Hidden:             true,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return dispatchUnknown(append([]string{"help"}, args...))
		},
	})

	root.AddCommand(
		&cobra.Command{
			Use:                "unpack <extracted-table.bin> <output-directory>",
			Short:              "Unpack a table into numbered files",
			Args:               exactArgs(2),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := m3table.UnpackFile(args[0], args[1]); err != nil {
					return &opError{op: "unpacking", err: err}
				}
				if verbose {
					return summarizeFile(cmd.OutOrStdout(), args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:                "pack <input-directory> <out-table.bin>",
			Short:              "Pack numbered files into a table",
			Args:               exactArgs(2),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := m3table.PackFile(args[0], args[1]); err != nil {
					return &opError{op: "packing", err: err}
				}
				if verbose {
					return summarizeFile(cmd.OutOrStdout(), args[1])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:                "list <table.bin>",
			Short:              "List the slots of a table",
			Args:               exactArgs(1),
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := list(cmd.OutOrStdout(), args[0]); err != nil {
					return &opError{op: "listing", err: err}
				}
				return nil
			},
		},
	)
	return root
}

// dispatchUnknown handles arguments that matched no command.
func dispatchUnknown(args []string) error {
	if len(args) == 3 {
		return unknownCommandError(args[0])
	}
	return errUsage
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return errUsage
		}
		return nil
	}
}

// --------------------------------------------------------------------

func readSlots(path string) (*m3table.Reader, []m3table.Slot, error) {
	table, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	r, err := m3table.NewReader(table)
	if err != nil {
		return nil, nil, err
	}
	slots, err := r.Slots()
	if err != nil {
		return nil, nil, err
	}
	return r, slots, nil
}

func list(w io.Writer, path string) error {
	r, slots, err := readSlots(path)
	if err != nil {
		return err
	}

	for _, s := range slots {
		if !s.Present() {
			fmt.Fprintf(w, "[%4d] %-10s\n", s.Index, m3table.SlotFileName(s))
			continue
		}
		fmt.Fprintf(w, "[%4d] %-10s offset=0x%08X size=%-9s %s\n",
			s.Index, m3table.SlotFileName(s), s.Offset, humanize.IBytes(uint64(s.Size())), digest.FromBytes(s.Data))
	}
	printSummary(w, r.Size(), slots)
	return nil
}

func summarizeFile(w io.Writer, path string) error {
	r, slots, err := readSlots(path)
	if err != nil {
		return err
	}

	printSummary(w, r.Size(), slots)
	return nil
}

func printSummary(w io.Writer, size int, slots []m3table.Slot) {
	var present int
	for _, s := range slots {
		if s.Present() {
			present++
		}
	}
	fmt.Fprintf(w, "%d slots (%d present, %d absent), %s\n",
		len(slots), present, len(slots)-present, humanize.IBytes(uint64(size)))
}
