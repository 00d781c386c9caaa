// Package config loads htmd configuration from TOML or YAML files, the
// environment and command line flags, and turns it into conversion values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/htmd/pkg/convert"
	"github.com/jmylchreest/htmd/pkg/sanitize"
	"github.com/jmylchreest/htmd/pkg/style"
)

const (
	// FileName is the config file looked up in $HOME and the working
	// directory, without extension.
	FileName = ".htmd"
	// EnvPrefix prefixes environment overrides, e.g. HTMD_CONVERSION_FLAVOR.
	EnvPrefix = "HTMD"
)

// Config is the full configuration.
type Config struct {
	Conversion  ConversionConfig  `mapstructure:"conversion" toml:"conversion" yaml:"conversion"`
	Security    SecurityConfig    `mapstructure:"security" toml:"security" yaml:"security"`
	Performance PerformanceConfig `mapstructure:"performance" toml:"performance" yaml:"performance"`
	Output      OutputConfig      `mapstructure:"output" toml:"output" yaml:"output"`
	Logging     LoggingConfig     `mapstructure:"logging" toml:"logging" yaml:"logging"`
}

// ConversionConfig selects the Markdown style.
type ConversionConfig struct {
	Flavor          string   `mapstructure:"flavor" toml:"flavor" yaml:"flavor" validate:"oneof=github commonmark strict" comment:"Markdown flavor: github, commonmark or strict"`
	HeadingStyle    string   `mapstructure:"heading_style" toml:"heading_style" yaml:"heading_style" validate:"oneof=atx setext" comment:"atx (# Title) or setext (underlined, levels 1 and 2)"`
	EmphasisStyle   string   `mapstructure:"emphasis_style" toml:"emphasis_style" yaml:"emphasis_style" validate:"oneof=asterisk underscore" comment:"asterisk (*x*) or underscore (_x_)"`
	BulletStyle     string   `mapstructure:"bullet_style" toml:"bullet_style" yaml:"bullet_style" validate:"oneof=- * +" comment:"Unordered list marker"`
	LineLength      int      `mapstructure:"line_length" toml:"line_length" yaml:"line_length" validate:"gte=0,lte=10000" comment:"Wrap paragraphs at this width, 0 disables wrapping"`
	PreserveHTML    bool     `mapstructure:"preserve_html" toml:"preserve_html" yaml:"preserve_html" comment:"Pass elements without a Markdown form through as HTML"`
	StripComments   bool     `mapstructure:"strip_comments" toml:"strip_comments" yaml:"strip_comments"`
	CleanWhitespace bool     `mapstructure:"clean_whitespace" toml:"clean_whitespace" yaml:"clean_whitespace"`
	DetectLanguage  bool     `mapstructure:"detect_language" toml:"detect_language" yaml:"detect_language" comment:"Guess the language of unlabeled code blocks"`
	Engine          string   `mapstructure:"engine" toml:"engine" yaml:"engine" validate:"oneof=native html-to-markdown" comment:"native or html-to-markdown"`
	RemoveSelectors []string `mapstructure:"remove_selectors" toml:"remove_selectors" yaml:"remove_selectors" comment:"CSS selectors pruned before sanitization"`
}

// SecurityConfig is the sanitization policy and input limits.
type SecurityConfig struct {
	MaxFileSize        string              `mapstructure:"max_file_size" toml:"max_file_size" yaml:"max_file_size" validate:"bytesize" comment:"Largest accepted input, e.g. 100MB; 0 disables the limit"`
	SanitizeHTML       bool                `mapstructure:"sanitize_html" toml:"sanitize_html" yaml:"sanitize_html"`
	AllowExternalLinks bool                `mapstructure:"allow_external_links" toml:"allow_external_links" yaml:"allow_external_links" comment:"When false, http, https and ftp links are removed with their text"`
	AllowedSchemes     []string            `mapstructure:"allowed_schemes" toml:"allowed_schemes" yaml:"allowed_schemes" validate:"dive,required"`
	AllowedTags        []string            `mapstructure:"allowed_tags" toml:"allowed_tags,omitempty" yaml:"allowed_tags,omitempty" validate:"dive,required" comment:"Replaces the built-in tag allow-list when set"`
	AllowedAttributes  map[string][]string `mapstructure:"allowed_attributes" toml:"allowed_attributes,omitempty" yaml:"allowed_attributes,omitempty" comment:"Replaces the built-in attribute allow-list when set; key \"*\" applies to every tag"`
}

// PerformanceConfig bounds batch concurrency.
type PerformanceConfig struct {
	MaxWorkers int `mapstructure:"max_workers" toml:"max_workers" yaml:"max_workers" validate:"gte=1,lte=256" comment:"Documents converted in parallel by batch and convert-dir"`
}

// OutputConfig controls where converted files go.
type OutputConfig struct {
	Directory         string `mapstructure:"directory" toml:"directory" yaml:"directory" validate:"required"`
	OverwriteExisting bool   `mapstructure:"overwrite_existing" toml:"overwrite_existing" yaml:"overwrite_existing"`
	CreateBackup      bool   `mapstructure:"create_backup" toml:"create_backup" yaml:"create_backup" comment:"Keep the previous output as <name>.bak"`
	FrontMatter       bool   `mapstructure:"front_matter" toml:"front_matter" yaml:"front_matter" comment:"Prefix output with YAML front matter (title, source, flavor)"`
}

// LoggingConfig selects log level and handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" toml:"format" yaml:"format" validate:"oneof=text json pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	policy := sanitize.DefaultPolicy()
	st := style.Default()
	return Config{
		Conversion: ConversionConfig{
			Flavor:          string(st.Flavor),
			HeadingStyle:    string(st.Heading),
			EmphasisStyle:   string(st.Emphasis),
			BulletStyle:     st.BulletMarker(),
			LineLength:      st.LineLength,
			PreserveHTML:    st.PreserveHTML,
			StripComments:   st.StripComments,
			CleanWhitespace: st.CleanWhitespace,
			DetectLanguage:  st.DetectLanguage,
			Engine:          string(st.Engine),
		},
		Security: SecurityConfig{
			MaxFileSize:        "100MB",
			SanitizeHTML:       true,
			AllowExternalLinks: policy.AllowExternalLinks,
			AllowedSchemes:     policy.AllowedSchemes,
		},
		Performance: PerformanceConfig{MaxWorkers: 4},
		Output: OutputConfig{
			Directory:         "./output",
			OverwriteExisting: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key with v so that environment variables
// and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("conversion.flavor", d.Conversion.Flavor)
	v.SetDefault("conversion.heading_style", d.Conversion.HeadingStyle)
	v.SetDefault("conversion.emphasis_style", d.Conversion.EmphasisStyle)
	v.SetDefault("conversion.bullet_style", d.Conversion.BulletStyle)
	v.SetDefault("conversion.line_length", d.Conversion.LineLength)
	v.SetDefault("conversion.preserve_html", d.Conversion.PreserveHTML)
	v.SetDefault("conversion.strip_comments", d.Conversion.StripComments)
	v.SetDefault("conversion.clean_whitespace", d.Conversion.CleanWhitespace)
	v.SetDefault("conversion.detect_language", d.Conversion.DetectLanguage)
	v.SetDefault("conversion.engine", d.Conversion.Engine)
	v.SetDefault("conversion.remove_selectors", []string{})

	v.SetDefault("security.max_file_size", d.Security.MaxFileSize)
	v.SetDefault("security.sanitize_html", d.Security.SanitizeHTML)
	v.SetDefault("security.allow_external_links", d.Security.AllowExternalLinks)
	v.SetDefault("security.allowed_schemes", d.Security.AllowedSchemes)
	v.SetDefault("security.allowed_tags", []string{})

	v.SetDefault("performance.max_workers", d.Performance.MaxWorkers)

	v.SetDefault("output.directory", d.Output.Directory)
	v.SetDefault("output.overwrite_existing", d.Output.OverwriteExisting)
	v.SetDefault("output.create_backup", d.Output.CreateBackup)
	v.SetDefault("output.front_matter", d.Output.FrontMatter)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads configuration into v and returns the validated result. An
// explicit path must exist; otherwise .htmd.{toml,yaml} is looked up in
// $HOME and the working directory and may be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		if err := checkFile(path); err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func checkFile(path string) error {
	var check func([]byte) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		check = CheckTOML
	case ".yaml", ".yml":
		check = CheckYAML
	default:
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := check(data); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid field.
type ValidationError []FieldError

func (e ValidationError) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		_, err := ParseSize(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath turns Config.Conversion.LineLength into conversion.line_length.
func fieldPath(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.StructNamespace(), "Config.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	rs := []rune(s)
	var sb strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "bytesize":
		return fmt.Sprintf("%q is not a size such as 512KB or 100MB", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed validation '%s'", fe.Tag())
	}
}

// ParseSize parses a human size. Empty and "0" mean no limit.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// Style converts the conversion section.
func (c *Config) Style() style.Style {
	return style.Style{
		Flavor:          style.Flavor(c.Conversion.Flavor),
		Heading:         style.HeadingStyle(c.Conversion.HeadingStyle),
		Emphasis:        style.Emphasis(c.Conversion.EmphasisStyle),
		Bullet:          c.Conversion.BulletStyle,
		LineLength:      c.Conversion.LineLength,
		PreserveHTML:    c.Conversion.PreserveHTML,
		StripComments:   c.Conversion.StripComments,
		CleanWhitespace: c.Conversion.CleanWhitespace,
		DetectLanguage:  c.Conversion.DetectLanguage,
		Engine:          style.Engine(c.Conversion.Engine),
	}
}

// Policy converts the security section, starting from the built-in
// allow-lists.
func (c *Config) Policy() *sanitize.Policy {
	p := sanitize.DefaultPolicy()
	if len(c.Security.AllowedTags) > 0 {
		p.AllowedTags = c.Security.AllowedTags
	}
	if len(c.Security.AllowedAttributes) > 0 {
		p.AllowedAttributes = c.Security.AllowedAttributes
	}
	p.AllowedSchemes = c.Security.AllowedSchemes
	p.AllowExternalLinks = c.Security.AllowExternalLinks
	p.StripComments = c.Conversion.StripComments
	return p
}

// ConvertConfig assembles the pipeline configuration.
func (c *Config) ConvertConfig() (convert.Config, error) {
	size, err := ParseSize(c.Security.MaxFileSize)
	if err != nil {
		return convert.Config{}, fmt.Errorf("security.max_file_size: %w", err)
	}
	return convert.Config{
		Policy:          c.Policy(),
		Style:           c.Style(),
		MaxInputSize:    size,
		SanitizeHTML:    c.Security.SanitizeHTML,
		RemoveSelectors: c.Conversion.RemoveSelectors,
	}, nil
}
