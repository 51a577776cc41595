package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/container"
)

func uploadCommand(c *container.Container) *cobra.Command {
	var p app.UploadParams

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a local folder to a Hugging Face repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Config.RequireToken(); err != nil {
				return err
			}

			commit, err := c.UploadService.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Upload complete: %s\n", commit.URL)
			notifyDone(cmd.Context(), c, fmt.Sprintf("upload: %d files to %s@%s (%s)",
				commit.Files, p.Repo.ID, p.Branch, commit.OID))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.FolderPath, "folder-path", "", "Local path to the folder containing your images")
	f.StringVar(&p.Repo.ID, "repo-id", "", "Repository ID (e.g. user_or_org/repo_name)")
	f.StringVar(&p.Repo.Type, "repo-type", "dataset", "Type of repo: dataset, model or space")
	f.StringVar(&p.PathInRepo, "path-in-repo", "images", "Sub-folder inside the repo where files will live")
	f.StringVar(&p.Branch, "branch", "main", "Branch name to upload to")
	f.StringVar(&p.CommitMessage, "commit-message", "", "Commit message")
	for _, name := range []string{"folder-path", "repo-id"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
