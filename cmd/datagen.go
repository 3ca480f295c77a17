package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/sparkify/lake/fake"
	"github.com/spf13/cobra"
)

// DatagenMain is wrapped by NewDatagenCommand and only exported for testing purposes.
var DatagenMain *fake.Main

// NewDatagenCommand returns a new cobra command wrapping DatagenMain.
func NewDatagenCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	DatagenMain = fake.NewMain()
	datagenCommand := &cobra.Command{
		Use:   "datagen",
		Short: "datagen - generate a miniature fake raw dataset for local runs",
		Long: `Writes randomly generated song JSON files and line separated event
logs under the output directory, laid out the way the real datasets are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := DatagenMain.Run(); err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := datagenCommand.Flags()
	if err := commandeer.Flags(flags, DatagenMain); err != nil {
		panic(err)
	}
	return datagenCommand
}

func init() {
	subcommandFns["datagen"] = NewDatagenCommand
}
