package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/internal/utils"
)

const (
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testEnvironmentPrefixConstant     = "FORGE"
	testEmbeddedConfigurationConstant = "log_level: info\nlog_format: structured\n"
	testFileConfigurationConstant     = "log_level: debug\n"
	testEnvironmentVariableConstant   = "FORGE_LOG_FORMAT"
	testEnvironmentOverrideConstant   = "console"
)

type testConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func TestConfigurationLoaderMergesEmbeddedDefaults(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	configuration := testConfiguration{}
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "info", configuration.LogLevel)
	require.Equal(testInstance, "structured", configuration.LogFormat)
}

func TestConfigurationLoaderFileOverridesEmbedded(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testFileConfigurationConstant), 0o644))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	configuration := testConfiguration{}
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", configuration.LogLevel)
	require.Equal(testInstance, "structured", configuration.LogFormat)
	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
}

func TestConfigurationLoaderAppliesEnvironmentOverrides(testInstance *testing.T) {
	testInstance.Setenv(testEnvironmentVariableConstant, testEnvironmentOverrideConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

	configuration := testConfiguration{}
	_, loadError := loader.LoadConfiguration("", nil, &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testEnvironmentOverrideConstant, configuration.LogFormat)
}
