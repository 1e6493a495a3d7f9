package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docutil/pkg/rangespec"
)

var rangeCount bool

var rangeCmd = &cobra.Command{
	Use:   "range <total> <spec>",
	Short: "Expand a range expression against a collection size",
	Example: `  docutil range 10 1..3,7
  docutil range -- 10 -3..`,
	Args: cobra.ExactArgs(2),
	RunE: runRange,
}

func init() {
	rangeCmd.Flags().BoolVar(&rangeCount, "count", false, "print only the number of selected indices")
	rootCmd.AddCommand(rangeCmd)
}

func runRange(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	total, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parse total %q: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if rangeCount {
		n, err := rangespec.Count(total, args[1])
		e.metrics.RecordRangeParse(err)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil
	}

	numbers, err := rangespec.GetNumbers(total, args[1])
	e.metrics.RecordRangeParse(err)
	if err != nil {
		return err
	}
	e.log.Debug("range expanded",
		zap.String("spec", args[1]),
		zap.Int("total", total),
		zap.Int("count", len(numbers)),
	)

	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	fmt.Fprintln(out, strings.Join(parts, ","))
	return nil
}
