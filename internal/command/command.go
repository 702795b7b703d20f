package command

import (
	commandHandler "billstack/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewVersionHandler)

type Command struct {
	versionCommandHandler *commandHandler.VersionHandler
}

// NewCommand .
func NewCommand(
	versionCommandHandler *commandHandler.VersionHandler,
) *Command {
	return &Command{
		versionCommandHandler: versionCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "print service name and version",
			Run: func(cmd *cobra.Command, args []string) {
				command, cleanup, err := newCmd()
				if err != nil {
					panic(err)
				}
				defer cleanup()

				command.versionCommandHandler.Print(cmd, args)
			},
		},
	)
}
