package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/funneltechie/inboxreadybotclassifier/internal/adapters/filter"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(logger *zap.Logger, cli *filter.CliFilter) error {
		defer logger.Sync()
		return run(logger, cli, flags)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cli *filter.CliFilter, flags *di.CLIFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.Email != "" {
		_, err := cli.ProcessContact(ctx, &core.Contact{
			Email:     flags.Email,
			FirstName: flags.FirstName,
			LastName:  flags.LastName,
		})
		if errors.Is(err, core.ErrNoEmail) || errors.Is(err, core.ErrUnclassifiable) {
			return nil
		}
		return err
	}

	var input io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
		logger.Info("Reading addresses from file", zap.String("file", flags.InputFile))
	} else {
		input = os.Stdin
		logger.Info("Reading addresses from stdin")
	}

	n, err := cli.ProcessLines(ctx, input)
	logger.Info("Finished scoring", zap.Int("classified", n))
	return err
}
