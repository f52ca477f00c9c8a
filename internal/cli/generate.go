package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/generate"
	"github.com/mark3labs/eeclientgen/internal/logging"
	"github.com/mark3labs/eeclientgen/internal/sink"
	"github.com/mark3labs/eeclientgen/internal/spec"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURI is the Elastic Email server the schema is fetched from.
// Generated clients talk to its /v2 endpoint.
const DefaultAPIURI = "https://api.elasticemail.com"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input      string
	Langs      []string
	Out        string
	ClientName string
	APIURI     string
	APIKey     string
	Unpack     bool
	Parallel   int
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
	LogJSON    bool

	stdout io.Writer
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Langs:      []string{generate.All},
		Out:        "Clients",
		ClientName: engine.DefaultClientName,
		APIURI:     DefaultAPIURI,
		APIKey:     engine.DefaultAPIKey,
		Parallel:   runtime.NumCPU(),
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate API clients from the API description",
		Long: "Generate API clients from the Elastic Email API description. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  eeclientgen generate --lang all
  eeclientgen generate --input apigenerator.json --lang cs,py --out ./clients
  eeclientgen --config eeclientgen.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.stdout = cmd.OutOrStdout()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL of the API description (defaults to <api-uri>/public/apigenerator)")
	flags.StringSlice("lang", nil, "Backends to generate: ids, aliases or all (repeatable, comma separated)")
	flags.String("out", "", "Output directory (default Clients)")
	flags.String("client-name", "", "Client class, namespace and file name")
	flags.String("api-uri", "", "Elastic Email server URI")
	flags.String("api-key", "", "API key placeholder baked into generated clients")
	flags.Bool("unpack", false, "Write multi-file clients as directories instead of archives")
	flags.Int("parallel", 0, "Maximum backends generated concurrently (default number of CPUs)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	strs := map[string]*string{
		"input":       &cfg.Input,
		"out":         &cfg.Out,
		"client-name": &cfg.ClientName,
		"api-uri":     &cfg.APIURI,
		"api-key":     &cfg.APIKey,
	}
	for name, dst := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	bools := map[string]*bool{
		"unpack":   &cfg.Unpack,
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"verbose":  &cfg.Verbose,
		"log-json": &cfg.LogJSON,
	}
	for name, dst := range bools {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	if flags.Changed("lang") {
		value, err := flags.GetStringSlice("lang")
		if err != nil {
			return err
		}
		cfg.Langs = value
	}
	if flags.Changed("parallel") {
		value, err := flags.GetInt("parallel")
		if err != nil {
			return err
		}
		cfg.Parallel = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.APIURI = strings.TrimRight(strings.TrimSpace(c.APIURI), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Langs = sanitizeList(c.Langs)
	for i, l := range c.Langs {
		c.Langs[i] = strings.ToLower(l)
	}
	if c.Out == "" {
		c.Out = "Clients"
	}
	if c.Parallel == 0 {
		c.Parallel = runtime.NumCPU()
	}
}

func (c *GenerateConfig) validate() error {
	if len(c.Langs) == 0 {
		return newUsageError("generate: --lang is empty (use ids, aliases or all)")
	}
	if _, err := generate.DefaultRegistry(engine.DefaultSettings()).Resolve(c.Langs); err != nil {
		return newUsageError(err.Error() + "\nHint: run `eeclientgen backends` to list ids and aliases.")
	}
	if !isIdentifier(c.ClientName) {
		return newUsageError(fmt.Sprintf("generate: --client-name %q must start with a letter and contain only letters, digits or underscores", c.ClientName))
	}
	if u, err := url.Parse(c.APIURI); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return newUsageError(fmt.Sprintf("generate: --api-uri %q must be an http or https URL", c.APIURI))
	}
	if c.Parallel < 0 {
		return newUsageError(fmt.Sprintf("generate: --parallel must not be negative, got %d", c.Parallel))
	}
	return nil
}

// clientURI is the endpoint baked into generated clients.
func (c *GenerateConfig) clientURI() string {
	if strings.HasSuffix(c.APIURI, "/v2") {
		return c.APIURI
	}
	return c.APIURI + "/v2"
}

func (c *GenerateConfig) input() string {
	if c.Input != "" {
		return c.Input
	}
	return spec.SchemaURL(c.APIURI)
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	if cfg.Verbose || cfg.LogJSON {
		if err := logging.Initialize(cfg.Verbose, cfg.LogJSON); err != nil {
			return err
		}
	}
	log := logging.Named("cli")
	stdout := cfg.stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	// 1) Load and validate the API description
	p, err := spec.Load(ctx, cfg.input())
	if err != nil {
		return specError(err)
	}
	log.Debugw("api description loaded", "input", cfg.input(), "version", p.Version, "categories", len(p.Categories), "classes", len(p.Classes))

	// 2) Run the requested backends
	settings := engine.Settings{ClientName: cfg.ClientName, APIURI: cfg.clientURI(), APIKey: cfg.APIKey}
	reg := generate.DefaultRegistry(settings)
	ids, err := reg.Resolve(cfg.Langs)
	if err != nil {
		return newUsageError(err.Error())
	}
	report, err := generate.Generate(ctx, p, reg, ids, generate.Options{Parallel: cfg.Parallel})
	if err != nil {
		return specError(err)
	}

	// 3) Persist every artifact that was produced
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}
	out := &sink.Filesystem{Root: cfg.Out, Force: cfg.Force, DryRun: cfg.DryRun, Unpack: cfg.Unpack}
	var planned []sink.PlannedFile
	var writeErr error
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(stdout, "%s: FAILED: %v\n", res.Backend, res.Err)
			continue
		}
		files, err := out.Write(ctx, res.Artifact)
		if err != nil {
			if writeErr == nil {
				writeErr = wrapOutputError(err, absOut)
			}
			fmt.Fprintf(stdout, "%s: FAILED: %v\n", res.Backend, err)
			continue
		}
		planned = append(planned, files...)
	}

	if cfg.DryRun {
		printPlan(stdout, absOut, planned)
	} else {
		for _, f := range planned {
			fmt.Fprintf(stdout, "%s: wrote %s (%d bytes)\n", f.Backend, filepath.Join(absOut, filepath.FromSlash(f.RelPath)), f.Size)
		}
	}

	if err := report.Err(); err != nil {
		return err
	}
	return writeErr
}

func printPlan(w io.Writer, outDir string, planned []sink.PlannedFile) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(w, "- %s [%s, %d bytes]\n", p.RelPath, p.Backend, p.Size)
	}
}

// specError maps structured loader and validation errors into friendly
// messages. Input problems are usage errors; network failures are not.
func specError(err error) error {
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := se.Message
		if !strings.HasPrefix(msg, "spec:") {
			msg = "spec: " + msg
		}
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.Code == spec.NetworkError {
			return errors.WithHint(errors.Wrap(err, "load api description"), "check --api-uri or pass a local --input file")
		}
		return newUsageError(msg)
	}
	var mal *spec.MalformedIRError
	if errors.As(err, &mal) {
		return newUsageError(mal.Error())
	}
	return err
}

func wrapOutputError(err error, outDir string) error {
	if errors.Is(err, sink.ErrExists) {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or use --force.", outDir, err))
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "not a directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out.", outDir, err))
	}
	return err
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit && r != '_' {
			return false
		}
	}
	return true
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range splitAndTrim(item) {
			if _, exists := seen[part]; exists {
				continue
			}
			seen[part] = struct{}{}
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "lang", "langs":
			cfg.Langs, err = valueAsStringSlice(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "clientname":
			cfg.ClientName, err = valueAsString(value)
		case "apiuri":
			cfg.APIURI, err = valueAsString(value)
		case "apikey":
			cfg.APIKey, err = valueAsString(value)
		case "unpack":
			cfg.Unpack, err = valueAsBool(value)
		case "parallel":
			cfg.Parallel, err = valueAsInt(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "force":
			cfg.Force, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		case "logjson":
			cfg.LogJSON, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", errors.Newf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", idx)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, errors.Newf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, errors.Newf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, errors.Newf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case nil:
		return 0, nil
	default:
		return 0, errors.Newf("expected integer, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
