package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "cvariants"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName   = "output"
	parallelFlagName = "parallel"
	seedFlagName     = "seed"
	verboseFlagName  = "verbose"
	rulesFlagName    = "rules"
	infoFlagName     = "info"
	checkFlagName    = "check"
	diffFlagName     = "diff"
	checkerFlagName  = "checker"

	percentageFlagName   = "percentage"
	enumerateAllFlagName = "enumerate-all"
	entryFlagName        = "entry"
	maxOrdersFlagName    = "max-orders"

	numMutFlagName   = "num-mut"
	singleFlagName   = "single"
	numProgsFlagName = "num-progs"

	runParallelConfigKey = "run.parallel"
	runSeedConfigKey     = "run.seed"
	emitDiffConfigKey    = "emit.diff"
	checkCommandKey      = "check.command"

	mutateRulesKey        = "mutate.rules"
	mutatePercentageKey   = "mutate.percentage"
	mutateEnumerateAllKey = "mutate.enumerate_all"
	mutateEntryKey        = "mutate.entry"
	mutateMaxOrdersKey    = "mutate.max_orders"

	mutilateRulesKey    = "mutilate.rules"
	mutilateNumMutKey   = "mutilate.num_mut"
	mutilateSingleKey   = "mutilate.single"
	mutilateNumProgsKey = "mutilate.num_progs"

	defaultOutputDir        = ".cvariants-out"
	defaultRunParallel      = 1
	defaultMutateEntry      = "main"
	defaultMutateMaxOrders  = 40320
	defaultMutilateNumMut   = 1
	defaultMutilateNumProgs = 50

	envPrefix = "CVARIANTS"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".cvariants.log"
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("config file not loaded", "error", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultOutputDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runSeedConfigKey, 0)
	viper.SetDefault(emitDiffConfigKey, false)
	viper.SetDefault(checkCommandKey, "")

	viper.SetDefault(mutateRulesKey, []string{})
	viper.SetDefault(mutatePercentageKey, 0.0)
	viper.SetDefault(mutateEnumerateAllKey, false)
	viper.SetDefault(mutateEntryKey, defaultMutateEntry)
	viper.SetDefault(mutateMaxOrdersKey, defaultMutateMaxOrders)

	viper.SetDefault(mutilateRulesKey, []string{})
	viper.SetDefault(mutilateNumMutKey, defaultMutilateNumMut)
	viper.SetDefault(mutilateSingleKey, false)
	viper.SetDefault(mutilateNumProgsKey, defaultMutilateNumProgs)

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (-4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotated file.
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
