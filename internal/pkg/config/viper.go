package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ErrConfigTypeRequired is returned by NewViperFromBytes when the format is empty.
var ErrConfigTypeRequired = errors.New("config: config type is required")

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// Option customizes a Viper instance before the configuration is read.
type Option func(v *viper.Viper)

// WithDefaults registers fallback values for keys absent from the file.
func WithDefaults(defaults map[string]any) Option {
	return func(v *viper.Viper) {
		for k, val := range defaults {
			v.SetDefault(k, val)
		}
	}
}

// WithEnvOverride lets environment variables override file values. The key
// "database.url" is read from PREFIX_DATABASE_URL (or DATABASE_URL when the
// prefix is empty).
func WithEnvOverride(prefix string) Option {
	return func(v *viper.Viper) {
		if prefix != "" {
			v.SetEnvPrefix(prefix)
		}
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
}

// NewViper loads configuration from pathFile and reloads it when the file changes.
func NewViper(pathFile string, opts ...Option) (*Viper, error) {
	v := viper.New()
	for _, opt := range opts {
		opt(v)
	}

	filename := path.Base(pathFile)
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filename, path.Ext(filename)))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed, reloaded", "path", pathFile, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration held in memory.
// configType is any format Viper understands ("yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte, opts ...Option) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, ErrConfigTypeRequired
	}

	v := viper.New()
	for _, opt := range opts {
		opt(v)
	}
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetBool(key string) bool { return vc.v.GetBool(key) }
func (vc *Viper) GetString(key string) string { return vc.v.GetString(key) }
func (vc *Viper) GetInt(key string) int { return vc.v.GetInt(key) }
func (vc *Viper) GetInt32(key string) int32 { return vc.v.GetInt32(key) }
func (vc *Viper) GetInt64(key string) int64 { return vc.v.GetInt64(key) }
func (vc *Viper) GetUint16(key string) uint16 { return vc.v.GetUint16(key) }
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetMinute returns the value for key as minutes.
func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

// GetArray returns the value for key as a list of non-blank strings.
func (vc *Viper) GetArray(key string) []string {
	var raw []string
	switch val := vc.v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = vc.v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Close implements io.Closer. Viper holds no resources worth releasing.
func (vc *Viper) Close() error {
	return nil
}
