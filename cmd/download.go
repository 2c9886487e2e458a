package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ytresolve/internal/download"
)

var flagOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <videoId>",
	Short: "Resolve a video and save the stream to disk",
	Args:  cobra.ExactArgs(1),
	RunE:  downloadRun,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory (default from config)")
}

func downloadRun(cmd *cobra.Command, args []string) error {
	dir := flagOutput
	if dir == "" {
		var err error
		dir, err = cfg.ExpandDownloadDir()
		if err != nil {
			return fmt.Errorf("resolving download dir: %w", err)
		}
	}

	stream, err := resolve(cmd.Context(), newExtractor(), args[0])
	if err != nil {
		return err
	}

	outputPath, err := download.Download(cmd.Context(), stream, stream.Title, download.Options{Dir: dir})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Downloaded: %s\n", outputPath)
	return nil
}
