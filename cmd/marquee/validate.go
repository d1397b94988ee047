package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/duvall/marquee/internal/presentation/tui"
	"github.com/duvall/marquee/pkg/dsl"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.yaml>",
	Short: "Check a sequence definition and preview its storyboard",
	Long:  `Parses a YAML sequence definition and prints its phase table, so authors can review timing before a session.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	def, err := dsl.LoadFile(path)
	if err != nil {
		return err
	}
	if len(def.Phases) == 0 {
		return fmt.Errorf("sequence %q has no phases", def.Family)
	}

	render := tui.NewRenderer()
	out, err := render(tui.Storyboard(def))
	if err != nil {
		// Renderer failures should not hide a valid definition.
		out = tui.Storyboard(def)
	}
	fmt.Print(out)
	fmt.Println("Sequence is valid! ✅")
	return nil
}
