package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/storyloom/storyloom/pkg/archive"
	"github.com/storyloom/storyloom/pkg/driver"
)

// backupCmd groups the offline game-directory backup operations. The
// server must not be running; the databases are copied as files.
func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore game directory backups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Back up the game directory into <game>/backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, story, err := gameDirAndStory()
			if err != nil {
				return err
			}
			path, err := archive.Create(dir, story)
			if err != nil {
				return err
			}
			fmt.Println("Backup written to", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the backups of the game directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _, err := gameDirAndStory()
			if err != nil {
				return err
			}
			backups, err := archive.List(dir)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("No backups found.")
				return nil
			}
			for _, b := range backups {
				fmt.Printf("%-32s %8d bytes  %s  %s (%d files)\n",
					b.Filename, b.Size, b.Timestamp, b.Story, b.Files)
			}
			return nil
		},
	})

	var overwrite bool
	restore := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore a backup into the game directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _, err := gameDirAndStory()
			if err != nil {
				return err
			}
			res, err := archive.Restore(args[0], dir, overwrite)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %d file(s) from story %q.\n", res.FilesRestored, res.Story)
			for _, s := range res.Skipped {
				fmt.Println("kept existing:", s)
			}
			if len(res.Skipped) > 0 {
				fmt.Println("Re-run with --overwrite to replace the kept files.")
			}
			return nil
		},
	}
	restore.Flags().BoolVar(&overwrite, "overwrite", false, "replace files that already exist in the game directory")
	cmd.AddCommand(restore)

	return cmd
}

// gameDirAndStory resolves the game directory and, when a story.yaml
// is present, the story name for the backup manifest.
func gameDirAndStory() (string, string, error) {
	if opts.game == "" {
		return "", "", errors.New("backup needs --game, the built-in demo story keeps no state")
	}
	story := ""
	if cfg, err := driver.LoadStoryConfig(filepath.Join(opts.game, "story.yaml")); err == nil {
		story = cfg.Name
	}
	return opts.game, story, nil
}
