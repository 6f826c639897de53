package main

import (
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
)

func newEvaluateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate SPOKEN TARGET",
		Short: "Score a spoken transcript against the target word",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := pronunciation.Evaluate(args[0], args[1])
			newPrinter(cmd.OutOrStdout()).printResult(result)
			return nil
		},
	}
}
