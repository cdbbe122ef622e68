package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/malt3/pe-dump/pkg/pe"
)

var sectionsIn source

func init() {
	sectionsIn.addFlags(sectionsCmd.Flags())
	rootCmd.AddCommand(sectionsCmd)
}

var sectionsCmd = &cobra.Command{
	Use:   "sections [image]",
	Short: "Print the header layout and section table of a 32-bit PE image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.WithField("image", args[0])

		img, err := sectionsIn.open(args[0], log)
		if err != nil {
			return err
		}
		defer img.Close()

		b := img.Bytes()
		layout, err := pe.Locate(b)
		if err != nil {
			return fmt.Errorf("locating headers of %s: %w", args[0], err)
		}
		sections, err := layout.Sections(b)
		if err != nil {
			return fmt.Errorf("reading section table of %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "image size:       %d (%s)\n", len(b), humanize.IBytes(uint64(len(b))))
		fmt.Fprintf(out, "PE header:        0x%x\n", layout.PEHeaderOffset)
		fmt.Fprintf(out, "optional header:  0x%x\n", layout.OptionalHeaderOffset)
		fmt.Fprintf(out, "section table:    0x%x (%d sections)\n", layout.SectionTableOffset, layout.NumberOfSections)
		fmt.Fprintf(out, "entry point:      0x%x\n", layout.OptionalHeader.AddressOfEntryPoint)
		fmt.Fprintf(out, "image base:       0x%x\n\n", layout.OptionalHeader.ImageBase)

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"#", "Name", "Raw Offset", "Raw Size", "Virtual Address", "Virtual Size", "Status"})
		for i := range sections {
			s := &sections[i]
			status := "ok"
			if _, err := s.Data(b); err != nil {
				status = "out of bounds"
			}
			table.Append([]string{
				strconv.Itoa(s.Index),
				strconv.Quote(s.Name),
				fmt.Sprintf("0x%08x", s.PointerToRawData),
				humanize.IBytes(uint64(s.SizeOfRawData)),
				fmt.Sprintf("0x%08x", s.VirtualAddress),
				humanize.IBytes(uint64(s.VirtualSize)),
				status,
			})
		}
		table.Render()
		return nil
	},
}
