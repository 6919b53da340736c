package di

import (
	"flag"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/funneltechie/inboxreadybotclassifier/internal/adapters/filter"
	"github.com/funneltechie/inboxreadybotclassifier/internal/config"
	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/factory"
	"github.com/funneltechie/inboxreadybotclassifier/internal/logging"
	"github.com/funneltechie/inboxreadybotclassifier/internal/metrics"
	"github.com/funneltechie/inboxreadybotclassifier/internal/utils"
	"github.com/funneltechie/inboxreadybotclassifier/internal/whitelist"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Contact flags
	Email     string
	FirstName string
	LastName  string

	// Classifier flags
	Whitelist string

	// Input and output flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	JSON       bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return ParseFlagSet(flag.CommandLine, os.Args[1:])
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	fs.StringVar(&flags.Email, "email", "", "Email address to score (reads addresses from -file or stdin if empty)")
	fs.StringVar(&flags.FirstName, "first-name", "", "Contact first name")
	fs.StringVar(&flags.LastName, "last-name", "", "Contact last name")

	fs.StringVar(&flags.Whitelist, "whitelist", "", "Comma-separated list of trusted domains")

	fs.StringVar(&flags.InputFile, "file", "", "File with one address per line (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and diagnostics")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.BoolVar(&flags.JSON, "json", false, "Print results as JSON lines")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	_ = fs.Parse(args)
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		return createConfigFromFlags(flags, logger)
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register classification service with no cache, CRM or metrics
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		trust *whitelist.Checker,
		text *utils.TextProcessor,
	) *core.ClassificationService {
		return f.CreateService(nil, nil, trust, nil, text, 0)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func() *metrics.Metrics { return nil }); err != nil {
		return nil, err
	}

	// Register CLI filter
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory, flags *CLIFlags) (*filter.CliFilter, error) {
		return f.CreateCliFilter(os.Stdout, flags.Verbose, flags.JSON)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags loads the config file when given and applies flag
// overrides on top
func createConfigFromFlags(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		var err error
		cfg, err = config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = config.NewFromViper(config.NewEmptyViper())
	}

	// The CLI never caches
	cfg.Set("cache.enabled", false)

	if flags.Whitelist != "" {
		domains := strings.Split(flags.Whitelist, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		cfg.Set("classifier.trusted_domains", domains)
	}

	return cfg, nil
}
