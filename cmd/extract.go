package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/malt3/pe-dump/pkg/pe"
	"github.com/malt3/pe-dump/pkg/sink"
)

var (
	outDir    string
	suffix    string
	extractIn source
)

func init() {
	extractCmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the artifacts to")
	extractCmd.Flags().StringVarP(&suffix, "suffix", "s", "", "suffix appended to every artifact file name (e.g. .txt)")
	extractIn.addFlags(extractCmd.Flags())
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract [image]",
	Short: "Dump the headers and sections of a 32-bit PE image",
	Long: `Validates the DOS header, PE header and section table of the image and
writes dos_header, file_header, optional_header and one file per section
(named after the section) to the output directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.WithField("image", args[0])

		img, err := extractIn.open(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()
		log.WithField("size", img.Len()).Debug("image mapped")

		artifacts, err := pe.Artifacts(img.Bytes())
		if err != nil {
			return fmt.Errorf("extracting %s: %w", args[0], err)
		}

		out, err := sink.NewDir(afero.NewOsFs(), outDir, sink.WithSuffix(suffix), sink.WithLogger(log))
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			if err := out.Emit(a); err != nil {
				return fmt.Errorf("extracting %s: %w", args[0], err)
			}
		}

		for _, path := range out.Written() {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "PE dumped")
		return nil
	},
}
