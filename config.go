package lodestone

import (
	"github.com/spf13/viper"
)

// Config carries the runtime settings for the lodestone binary. All
// values have defaults and can be overridden through environment
// variables (REGION, OUTFILE_PREFIX, ENGINES, LOG_LEVEL,
// WRITE_IO_RATE, STORAGE_GB_MONTH_RATE). An empty Region means the
// region is resolved from the ambient AWS shared config instead.
type Config struct {
	Region             string
	OutfilePrefix      string
	Engines            []string
	LogLevel           string
	WriteIORate        float64
	StorageGBMonthRate float64
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("region", "")
	viper.SetDefault("outfile_prefix", "aurora_cost_analysis")
	viper.SetDefault("engines", []string{"aurora-mysql", "aurora-postgresql"})
	viper.SetDefault("log_level", "info")
	viper.SetDefault("write_io_rate", 0.20)
	viper.SetDefault("storage_gb_month_rate", 0.10)
	viper.AutomaticEnv()

	// GetStringSlice rather than Unmarshal so a space-separated
	// ENGINES environment value still decodes into a slice
	cfg := Config{
		Region:             viper.GetString("region"),
		OutfilePrefix:      viper.GetString("outfile_prefix"),
		Engines:            viper.GetStringSlice("engines"),
		LogLevel:           viper.GetString("log_level"),
		WriteIORate:        viper.GetFloat64("write_io_rate"),
		StorageGBMonthRate: viper.GetFloat64("storage_gb_month_rate"),
	}

	return &cfg, nil
}
