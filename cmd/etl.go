package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/sparkify/lake/etl"
	"github.com/spf13/cobra"
)

// ETLMain is wrapped by NewETLCommand and only exported for testing purposes.
var ETLMain *etl.Main

// NewETLCommand returns a new cobra command wrapping ETLMain.
func NewETLCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ETLMain = etl.NewMain()
	etlCommand := &cobra.Command{
		Use:   "etl",
		Short: "etl - build the star-schema parquet tables from the raw JSON datasets",
		Long: `Reads the per-song JSON files and the line separated JSON event
logs, derives the songs, artists, users, time and songplays tables, and
writes them as partitioned parquet under the output root. Paths may be
s3://bucket/prefix or local directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := ETLMain.Run(); err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := etlCommand.Flags()
	if err := commandeer.Flags(flags, ETLMain); err != nil {
		panic(err)
	}
	return etlCommand
}

func init() {
	subcommandFns["etl"] = NewETLCommand
}
