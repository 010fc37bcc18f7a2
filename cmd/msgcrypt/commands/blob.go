package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/msgcrypt/blob"
)

func blobCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Upload and download raw encrypted blobs",
	}
	cmd.AddCommand(blobUploadCmd(a), blobDownloadCmd(a))
	return cmd
}

func blobUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file as is and print its blob ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			blobs, err := a.factory.CreateBlobTransport()
			if err != nil {
				return err
			}
			id, err := blobs.UploadBlob(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func blobDownloadCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "download <blob-id>",
		Short: "Download a blob as is",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := blob.ParseID(args[0])
			if err != nil {
				return err
			}
			blobs, err := a.factory.CreateBlobTransport()
			if err != nil {
				return err
			}
			data, err := blobs.DownloadBlob(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0o600)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default stdout)")
	return cmd
}
