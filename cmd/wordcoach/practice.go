package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/wordcoach/internal/srs"
)

type identityFlags struct {
	userID int64
	wordID int64
}

func (f *identityFlags) register(flags *pflag.FlagSet) {
	flags.Int64Var(&f.userID, "user", 0, "user ID")
	flags.Int64Var(&f.wordID, "word", 0, "word ID")
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Errorf("cmd.MarkFlagRequired(%s) > %w", name, err))
		}
	}
}

func newPracticeCommand() *cobra.Command {
	var (
		ids     identityFlags
		correct bool
		spoken  string
		target  string
	)

	command := &cobra.Command{
		Use:   "practice",
		Short: "Apply a practice answer to a word, either as a result or as a spoken transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			p := newPrinter(cmd.OutOrStdout())
			var record srs.Record
			if cmd.Flags().Changed("spoken") {
				result, saved, err := service.SubmitSpokenAttempt(cmd.Context(), ids.userID, ids.wordID, spoken, target)
				if err != nil {
					return fmt.Errorf("service.SubmitSpokenAttempt() > %w", err)
				}
				p.printResult(result)
				p.printOutcome(result.Passed(service.PassScore()))
				record = saved
			} else {
				record, err = service.ApplyPracticeOutcome(cmd.Context(), ids.userID, ids.wordID, correct)
				if err != nil {
					return fmt.Errorf("service.ApplyPracticeOutcome() > %w", err)
				}
				p.printOutcome(correct)
			}
			p.printRecord(record)
			return nil
		},
	}

	flags := command.Flags()
	ids.register(flags)
	flags.BoolVar(&correct, "correct", false, "whether the answer was correct; use --correct=false for a miss")
	flags.StringVar(&spoken, "spoken", "", "spoken transcript to evaluate")
	flags.StringVar(&target, "target", "", "target word the transcript is scored against")
	markRequired(command, "user", "word")
	command.MarkFlagsOneRequired("correct", "spoken")
	command.MarkFlagsMutuallyExclusive("correct", "spoken")
	command.MarkFlagsRequiredTogether("spoken", "target")

	return command
}

func newEnrollCommand() *cobra.Command {
	var ids identityFlags
	command := &cobra.Command{
		Use:   "enroll",
		Short: "Add a word to a user's review list",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			record, err := service.EnrollWord(cmd.Context(), ids.userID, ids.wordID)
			if err != nil {
				return fmt.Errorf("service.EnrollWord() > %w", err)
			}
			newPrinter(cmd.OutOrStdout()).printRecord(record)
			return nil
		},
	}
	ids.register(command.Flags())
	markRequired(command, "user", "word")
	return command
}

func newResetCommand() *cobra.Command {
	var ids identityFlags
	command := &cobra.Command{
		Use:   "reset",
		Short: "Discard a user's progress on a word",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			record, err := service.ResetWord(cmd.Context(), ids.userID, ids.wordID)
			if err != nil {
				return fmt.Errorf("service.ResetWord() > %w", err)
			}
			newPrinter(cmd.OutOrStdout()).printRecord(record)
			return nil
		},
	}
	ids.register(command.Flags())
	markRequired(command, "user", "word")
	return command
}

func newDueCommand() *cobra.Command {
	var (
		userID int64
		limit  int
	)
	command := &cobra.Command{
		Use:   "due",
		Short: "List the words a user should review now",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, closeFn, err := openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := service.DueWords(cmd.Context(), userID, limit)
			if err != nil {
				return fmt.Errorf("service.DueWords() > %w", err)
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(records) == 0 {
				_, _ = p.good.Fprintln(p.out, "Nothing to review.")
				return nil
			}
			_, _ = fmt.Fprintf(p.out, "%d word(s) due\n", len(records))
			for _, record := range records {
				p.printRecord(record)
			}
			return nil
		},
	}
	flags := command.Flags()
	flags.Int64Var(&userID, "user", 0, "user ID")
	flags.IntVar(&limit, "limit", 20, "maximum number of words, 0 for all")
	markRequired(command, "user")
	return command
}
