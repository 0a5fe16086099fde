package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/littlesteps/internal/cli"
	"github.com/at-ishikawa/littlesteps/internal/quiz"
)

func newQuizCommand() *cobra.Command {
	var questions int
	command := &cobra.Command{
		Use:   "quiz",
		Short: "Play the \"which action is this?\" quiz as the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			user, err := currentUser(ctx, s)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("questions") {
				questions = cfg.Quiz.Questions
			}

			categories, err := s.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("store.GetCategories() > %w", err)
			}
			videos, err := s.GetAllVideos(ctx)
			if err != nil {
				return fmt.Errorf("store.GetAllVideos() > %w", err)
			}
			rounds, err := quiz.NewGenerator(nil).Generate(categories, videos, questions)
			if err != nil {
				return fmt.Errorf("quiz.Generate() > %w", err)
			}

			base := cli.NewInteractiveQuizCLI(cmd.InOrStdin(), cmd.OutOrStdout())
			quizCLI := cli.NewActionQuizCLI(base, s, user.UserProfile().ID, rounds, quiz.NewFeedback(nil))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Hi %s! Answer with the number of the action.\n\n", user.UserProfile().FirstName)
			return quizCLI.Run(ctx, quizCLI)
		},
	}
	command.Flags().IntVar(&questions, "questions", quiz.DefaultQuestions, "Number of questions, defaults to quiz.questions in the config")
	return command
}
