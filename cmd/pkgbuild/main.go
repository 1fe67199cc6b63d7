package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pkgbuild/cmd/pkgbuild/commands"
	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/pkgbuild/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var cli commands.CLI
	parser, err := kong.New(&cli,
		kong.Name("pkgbuild"),
		kong.Description("Resolve package sources and build their units incrementally."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		slog.Error("Failed to initialize CLI", "error", err)
		return 1
	}
	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	global := commands.NewGlobal(ctx, os.Stdout)
	runErr := kctx.Run(global, &cli)
	return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(runErr)
}
