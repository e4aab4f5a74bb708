package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/nibble/internal/lessons"
	"github.com/abhisek/nibble/internal/llm"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Generate, inspect and clear lesson content",
}

var lessonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the lesson catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-4s  %-22s  %s\n", "ID", "Title", "Subtitle")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		for _, l := range lessons.Catalog() {
			fmt.Fprintf(out, "%-4s  %-22s  %s\n", l.ID, l.Title, l.Subtitle)
		}
		return nil
	},
}

var lessonShowCmd = &cobra.Command{
	Use:   "show <lesson-id>",
	Short: "Show a lesson, generating and caching it on first use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		regenerate, _ := cmd.Flags().GetBool("regenerate")
		asJSON, _ := cmd.Flags().GetBool("json")
		opts := lessons.Options{Regenerate: regenerate}
		opts.Tone, _ = cmd.Flags().GetString("tone")
		opts.Difficulty, _ = cmd.Flags().GetString("difficulty")

		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := llm.WithUser(cmd.Context(), userFlag(cmd))
		res, err := e.lessons.Generate(ctx, userFlag(cmd), args[0], opts)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		printLesson(cmd.OutOrStdout(), res)
		return nil
	},
}

var lessonQuizCmd = &cobra.Command{
	Use:   "regenerate-quiz <lesson-id>",
	Short: "Replace the cached quiz for a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		ctx := llm.WithUser(cmd.Context(), userFlag(cmd))
		res, err := e.lessons.RegenerateQuiz(ctx, userFlag(cmd), args[0])
		if err != nil {
			return err
		}
		if res.FromFallback {
			fmt.Fprintln(cmd.ErrOrStderr(), "Quiz generation failed; the cached quiz was kept.")
		}
		printQuiz(cmd.OutOrStdout(), res.Content)
		return nil
	},
}

var lessonClearCmd = &cobra.Command{
	Use:   "clear <lesson-id>",
	Short: "Remove a cached lesson so the next view regenerates it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.lessons.Clear(cmd.Context(), userFlag(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared lesson %s for %s.\n", args[0], userFlag(cmd))
		return nil
	},
}

func printLesson(w io.Writer, res *lessons.Result) {
	c := res.Content
	sep := strings.Repeat("─", 60)

	fmt.Fprintln(w, c.Title)
	fmt.Fprintln(w, sep)
	switch {
	case res.Cached:
		fmt.Fprintf(w, "cached  source=%s  generated=%s\n", res.Metadata.Source, res.Metadata.GeneratedAt.Local().Format("2006-01-02 15:04"))
	case res.FromFallback:
		fmt.Fprintf(w, "offline copy  source=%s\n", res.Metadata.Source)
	default:
		fmt.Fprintf(w, "generated  source=%s\n", res.Metadata.Source)
	}
	if res.Metadata.Strategy != "" {
		fmt.Fprintf(w, "repair strategy: %s\n", res.Metadata.Strategy)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.Overview)

	for _, s := range c.Sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## "+s.Heading)
		fmt.Fprintln(w, s.Body)
	}
	if len(c.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Notes:")
		for _, n := range c.Notes {
			fmt.Fprintln(w, "  - "+n)
		}
	}
	fmt.Fprintln(w)
	printQuiz(w, c)
}

func printQuiz(w io.Writer, c lessons.LessonContent) {
	fmt.Fprintln(w, "Quiz:")
	for i, q := range c.Quiz {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			mark := " "
			if j == q.CorrectIndex {
				mark = "*"
			}
			fmt.Fprintf(w, "   %s %c) %s\n", mark, 'A'+rune(j), opt)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	lessonShowCmd.Flags().Bool("regenerate", false, "Discard the cached copy and generate a new one")
	lessonShowCmd.Flags().Bool("json", false, "Print the result as JSON")
	lessonShowCmd.Flags().String("tone", "", "Tone hint for generation (e.g. friendly, concise)")
	lessonShowCmd.Flags().String("difficulty", "", "Difficulty hint for generation")

	lessonCmd.AddCommand(lessonListCmd)
	lessonCmd.AddCommand(lessonShowCmd)
	lessonCmd.AddCommand(lessonQuizCmd)
	lessonCmd.AddCommand(lessonClearCmd)
}
