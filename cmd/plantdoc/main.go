package main

import (
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/plantdoc/cmd/plantdoc/commands"
	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cli commands.CLI
	parser, err := kong.New(&cli,
		kong.Name("plantdoc"),
		kong.Description("Render PlantUML diagrams and generate Markdown documentation pages with an index."),
		kong.UsageOnError(),
	)
	if err != nil {
		return derrors.NewCLIErrorAdapter(false, nil).HandleError(err)
	}

	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	err = ctx.Run(&commands.Global{})
	return derrors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
