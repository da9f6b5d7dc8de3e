package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"

	"github.com/sw33tLie/granfondo/pkg/events"
	"github.com/sw33tLie/granfondo/pkg/providers"
	"github.com/sw33tLie/granfondo/pkg/providers/marazone"
	"github.com/sw33tLie/granfondo/pkg/providers/smartchip"
	"github.com/sw33tLie/granfondo/pkg/providers/sptc"
)

func newRegistry() (*providers.Registry, error) {
	return providers.NewRegistry(
		&sptc.Provider{},
		&smartchip.Provider{},
		&marazone.Provider{},
	)
}

// loadDirectory returns the built-in events plus any from the config file.
func loadDirectory() (*events.Directory, error) {
	return events.Load(viper.GetViper())
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
