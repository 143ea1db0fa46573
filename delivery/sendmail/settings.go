package sendmail

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// Defaults used when a setting is not given.
const (
	DefaultLocation  = "/usr/sbin/sendmail"
	DefaultArguments = "-i"
)

// Keys recognized by SettingsFromMap and in the [sendmail] table read by
// LoadSettings.
const (
	KeyLocation  = "location"
	KeyArguments = "arguments"
)

// Settings configures how the MTA is invoked.
type Settings struct {
	// Location is the path to the sendmail-compatible binary.
	Location string

	// Arguments holds extra flags placed before the envelope flags. It is
	// split into words with POSIX shell quoting rules.
	Arguments string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Location:  DefaultLocation,
		Arguments: DefaultArguments,
	}
}

// SettingsFromMap returns the default settings with each recognized key in
// values replacing the matching default outright. An empty "arguments" value
// therefore removes the default -i. Any other key fails with
// ErrUnknownSetting.
func SettingsFromMap(values map[string]string) (Settings, error) {
	s := DefaultSettings()

	// sorted so the error for several bad keys is stable
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch k {
		case KeyLocation:
			s.Location = values[k]
		case KeyArguments:
			s.Arguments = values[k]
		default:
			return s, fmt.Errorf("%w: %q", ErrUnknownSetting, k)
		}
	}

	return s, nil
}

type settingsFile struct {
	Sendmail map[string]any `toml:"sendmail"`
}

// LoadSettings reads settings from the [sendmail] table of a TOML file:
//
//	[sendmail]
//	location = "/opt/mta/sendmail"
//	arguments = "-i -odb"
//
// Keys missing from the file keep their defaults. If the file does not exist,
// the defaults are returned.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("reading sendmail settings: %w", err)
	}

	return ParseSettings(data)
}

// ParseSettings works like LoadSettings, but on TOML already in memory.
func ParseSettings(data []byte) (Settings, error) {
	var f settingsFile
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing sendmail settings: %w", err)
	}

	values := make(map[string]string, len(f.Sendmail))
	for k, v := range f.Sendmail {
		s, isString := v.(string)
		if !isString {
			return DefaultSettings(), fmt.Errorf("sendmail setting %q must be a string, not %T", k, v)
		}
		values[k] = s
	}

	return SettingsFromMap(values)
}
