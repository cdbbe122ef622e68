package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malt3/pe-dump/pkg/image"
	"github.com/malt3/pe-dump/pkg/pe"
)

// Exit statuses by failure kind.
const (
	exitFailure                 = 1
	exitAccess                  = 2
	exitLoad                    = 3
	exitInvalidFormat           = 4
	exitUnsupportedArchitecture = 5
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "pe-dump",
	Short: "pe-dump splits 32-bit PE images into their structural pieces",
	Long: `A simple CLI tool for validating 32-bit Portable Executable images
				  and dumping their DOS header, file header, optional header
				  and raw section data to individual files.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
}

func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000000",
		FullTimestamp:   true,
	})
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logrus.InfoLevel.String(), "log level (trace, debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, image.ErrAccess):
		return exitAccess
	case errors.Is(err, image.ErrLoad):
		return exitLoad
	case errors.Is(err, pe.ErrInvalidFormat):
		return exitInvalidFormat
	case errors.Is(err, pe.ErrUnsupportedArchitecture):
		return exitUnsupportedArchitecture
	default:
		return exitFailure
	}
}
