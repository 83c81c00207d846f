package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vbonduro/greenthumb/internal/imaging"
)

func newIdentifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify the plant in an image file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd, args[0])
		},
	}
}

func runIdentify(cmd *cobra.Command, path string) error {
	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := imaging.Encode(f, "")
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	backend, err := newBotanist(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("identifying plant", "file", path, "mime_type", img.MIMEType, "bytes", len(img.Data))
	record, err := backend.Identify(cmd.Context(), img.Data, img.MIMEType)
	if err != nil {
		return fmt.Errorf("failed to identify plant: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}
