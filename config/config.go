// Package config 读取编辑器的排版与运行参数：先加载 .env 文件，再读取 OUTLINER_* 环境变量。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ByLCY/outliner/editor"
	"github.com/ByLCY/outliner/element"
	"github.com/ByLCY/outliner/text"
)

// EnvPrefix 是所有环境变量的前缀。
const EnvPrefix = "OUTLINER_"

// Config 汇总排版、交互与日志参数。长度单位均为 pt。
type Config struct {
	FontFamily         string        `validate:"required"`
	MonoFamily         string        `validate:"required"`
	FontSize           float64       `validate:"gt=0,lte=96"`
	LineHeightMultiple float64       `validate:"gte=1,lte=4"`
	SpacingBefore      float64       `validate:"gte=0"`
	SpacingAfter       float64       `validate:"gte=0"`
	Indent             float64       `validate:"gte=0"`
	Gutter             float64       `validate:"gte=0"`
	SpacerHeight       float64       `validate:"gte=0"`
	Width              float64       `validate:"gt=0"`
	Margin             float64       `validate:"gte=0"`
	BlinkInterval      time.Duration `validate:"gt=0"`
	DebounceDelay      time.Duration `validate:"gte=0"`
	Journal            bool
	LogLevel           string `validate:"oneof=debug info warn error"`
	LogFile            string
	Production         bool
}

// Default 返回默认配置，与 editor.DefaultOptions 保持一致。
func Default() Config {
	o := editor.DefaultOptions()
	return Config{
		FontFamily:         o.FontFamily,
		MonoFamily:         "Go Mono",
		FontSize:           o.FontSize,
		LineHeightMultiple: o.LineHeightMultiple,
		SpacingBefore:      o.SpacingBefore,
		SpacingAfter:       o.SpacingAfter,
		Indent:             o.Indent,
		Gutter:             o.Gutter,
		SpacerHeight:       o.SpacerHeight,
		Width:              480,
		Margin:             36,
		BlinkInterval:      o.BlinkInterval,
		DebounceDelay:      element.DefaultDebounce,
		LogLevel:           "info",
	}
}

// Load 依次加载 files 中的 .env 文件（未指定时尝试当前目录的 .env，不存在则忽略），
// 再用环境变量覆盖默认值并校验。已存在的环境变量不会被 .env 覆盖。
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("读取 .env 失败: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("读取 %s 失败: %w", strings.Join(files, ", "), err)
	}
	cfg := Default()
	if err := cfg.apply(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 按结构体标签校验配置。
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("配置项 %s 不满足 %s（当前值 %v）", fe.Field(), fe.ActualTag(), fe.Value())
		}
		return fmt.Errorf("校验配置失败: %w", err)
	}
	return nil
}

// EditorOptions 返回对应的编辑器参数。
func (c Config) EditorOptions() editor.Options {
	return editor.Options{
		FontFamily:         c.FontFamily,
		FontSize:           c.FontSize,
		LineHeightMultiple: c.LineHeightMultiple,
		SpacingBefore:      c.SpacingBefore,
		SpacingAfter:       c.SpacingAfter,
		Indent:             c.Indent,
		Gutter:             c.Gutter,
		SpacerHeight:       c.SpacerHeight,
		BlinkInterval:      c.BlinkInterval,
	}
}

type lookupFunc func(key string) (string, bool)

func (c *Config) apply(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	length := func(name string, dst *float64) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		l, err := text.ParseLength(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = l.ToPT()
		return nil
	}
	number := func(name string, dst *float64) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = f
		return nil
	}
	duration := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	boolean := func(name string, dst *bool) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("FONT_FAMILY", &c.FontFamily)
	str("MONO_FAMILY", &c.MonoFamily)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)
	c.LogLevel = strings.ToLower(c.LogLevel)
	if v, ok := lookup(EnvPrefix + "ENV"); ok {
		c.Production = strings.EqualFold(strings.TrimSpace(v), "production")
	}

	steps := []error{
		length("FONT_SIZE", &c.FontSize),
		number("LINE_HEIGHT", &c.LineHeightMultiple),
		length("SPACING_BEFORE", &c.SpacingBefore),
		length("SPACING_AFTER", &c.SpacingAfter),
		length("INDENT", &c.Indent),
		length("GUTTER", &c.Gutter),
		length("SPACER_HEIGHT", &c.SpacerHeight),
		length("WIDTH", &c.Width),
		length("MARGIN", &c.Margin),
		duration("BLINK_INTERVAL", &c.BlinkInterval),
		duration("DEBOUNCE", &c.DebounceDelay),
		boolean("JOURNAL", &c.Journal),
	}
	return errors.Join(steps...)
}
