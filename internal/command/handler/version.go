package command

import (
	"runtime"

	"billstack/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type VersionHandler struct {
	logger *zap.Logger
	conf   *config.Configuration
}

func NewVersionHandler(logger *zap.Logger, conf *config.Configuration) *VersionHandler {
	return &VersionHandler{
		logger: logger,
		conf:   conf,
	}
}

func (handler *VersionHandler) Print(cmd *cobra.Command, args []string) {
	name := handler.conf.App.Name
	if name == "" {
		name = "billstack"
	}
	version := handler.conf.App.Version
	if version == "" {
		version = "dev"
	}
	cmd.Printf("%s %s (%s)\n", name, version, runtime.Version())
}
