package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/runner"
)

var (
	tutorDifficulty string
	hintFile        string
	challengeGuide  bool
)

var hintCmd = &cobra.Command{
	Use:   "hint QUESTION",
	Short: "Ask the tutor for a hint",
	Long: `Ask the tutor a question, optionally about a file, and get guidance
without a full solution.

Examples:
  pytutor hint "why does my loop never stop?" --file loop.py
  pytutor hint "how do lists work?" --difficulty advanced`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseDifficulty(tutorDifficulty)
		if err != nil {
			return err
		}
		code := ""
		if hintFile != "" {
			if code, err = readSource(hintFile); err != nil {
				return err
			}
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		reply, err := rt.newTutor().Hint(cmd.Context(), rt.locale(), args[0], code, d)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, reply)
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Get a Python practice challenge",
	Long: `Generate a practice exercise at the chosen difficulty. With --guide the
tutor also explains how to approach it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := parseDifficulty(tutorDifficulty)
		if err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		tutor := rt.newTutor()
		challenge, err := tutor.Challenge(cmd.Context(), rt.locale(), d)
		if err != nil {
			return err
		}
		if err := printMarkdown(cmd, challenge); err != nil {
			return err
		}
		if !challengeGuide {
			return nil
		}

		guidance, err := tutor.Guidance(cmd.Context(), rt.locale(), challenge)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, guidance)
	},
}

func init() {
	for _, c := range []*cobra.Command{hintCmd, challengeCmd} {
		c.Flags().StringVar(&tutorDifficulty, "difficulty", string(interpreter.Beginner),
			"beginner, advanced or hsg")
		rootCmd.AddCommand(c)
	}
	hintCmd.Flags().StringVarP(&hintFile, "file", "f", "", "include this file's code")
	challengeCmd.Flags().BoolVar(&challengeGuide, "guide", false, "also ask how to approach the challenge")
}

func parseDifficulty(s string) (interpreter.Difficulty, error) {
	d := interpreter.Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("difficulty must be \"beginner\", \"advanced\", or \"hsg\", got %q", s)
	}
	return d, nil
}

func printMarkdown(cmd *cobra.Command, text string) error {
	md, err := runner.NewMarkdown(100)
	if err == nil {
		text = md.Render(text)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
