package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/littlesteps/internal/assets"
	"github.com/at-ishikawa/littlesteps/internal/cli"
)

func newCategoryCommand() *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Action category commands",
	}
	categoryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories with their video counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			categories, err := s.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("store.GetCategories() > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintCategories(categories)
			return nil
		},
	})
	categoryCmd.AddCommand(&cobra.Command{
		Use:   "unlock <category-id>",
		Short: "Unlock a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if err := s.UnlockCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("store.UnlockCategory(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %s\n", args[0])
			return nil
		},
	})
	return categoryCmd
}

func newVideoCommand() *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Video commands",
	}
	videoCmd.AddCommand(&cobra.Command{
		Use:   "list <category-id>",
		Short: "List the videos of a category in play order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if _, err := s.GetCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("store.GetCategory(%s) > %w", args[0], err)
			}
			videos, err := s.GetVideosByCategory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("store.GetVideosByCategory(%s) > %w", args[0], err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintVideos(videos)
			return nil
		},
	})
	return videoCmd
}

func newWatchCommand() *cobra.Command {
	var (
		sequence       bool
		narrationLevel int
	)
	command := &cobra.Command{
		Use:   "watch <category-id> [video-id]",
		Short: "Watch a video, or with --sequence every video from it to the end",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if narrationLevel < assets.MinNarrationLevel || narrationLevel > assets.MaxNarrationLevel {
				return fmt.Errorf("--narration-level must be between %d and %d", assets.MinNarrationLevel, assets.MaxNarrationLevel)
			}
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
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
			var videoID string
			if len(args) == 2 {
				videoID = args[1]
			}

			_, err = cli.NewPlayer(s, cmd.OutOrStdout(), narrationLevel).Play(ctx, user.UserProfile().ID, args[0], videoID, sequence)
			return err
		},
	}
	command.Flags().BoolVar(&sequence, "sequence", false, "Play all videos from the start video to the end")
	command.Flags().IntVar(&narrationLevel, "narration-level", assets.MinNarrationLevel, "Narration detail level")
	return command
}
