package tier

import (
	"fmt"
	"strings"

	"discover/lib/aggregate"
	"discover/lib/schema"
	"discover/pcache"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTopKCounts is used when no top-k counts are configured.
var DefaultTopKCounts = []uint32{5, 10, 20, 50, 100}

type TierArgs struct {
	pcache.PCacheArgs `json:"pcache_args"`

	// go-arg does not support defaults on slices, empty means DefaultTopKCounts
	TopKCounts  []uint32 `arg:"--topk-counts,env:TOPK_COUNTS" json:"topk_counts,omitempty"`
	ServiceName string   `arg:"--service-name,env:SERVICE_NAME" default:"discover" json:"service_name,omitempty"`
	Dev         bool     `arg:"--dev,env:DEV" default:"true" json:"dev,omitempty"`
}

func (args TierArgs) Valid() error {
	problems := make([]string, 0)
	for i, n := range args.TopKCounts {
		if n == 0 {
			problems = append(problems, fmt.Sprintf("TOPK_COUNTS[%d] must be positive", i))
		}
	}
	if args.OptionsCacheMaxCost <= 0 {
		problems = append(problems, "OPTIONS_CACHE_MAX_COST must be positive")
	}
	if args.OptionsCacheAvgCost <= 0 {
		problems = append(problems, "OPTIONS_CACHE_AVG_COST must be positive")
	}
	if args.OptionsCacheTTL < 0 {
		problems = append(problems, "OPTIONS_CACHE_TTL must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid args: %s", strings.Join(problems, ", "))
	}
	return nil
}

type Tier struct {
	Logger     *zap.Logger
	TopKCounts []uint32
	// Generated dropdown options keyed by schema fingerprint
	OptionsCache pcache.PCache
	Args         TierArgs
}

func CreateFromArgs(args *TierArgs) (tier Tier, err error) {
	if err = args.Valid(); err != nil {
		return tier, err
	}
	var logger *zap.Logger
	if args.Dev {
		logger, err = zap.NewDevelopment()
	} else {
		config := zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		logger, err = config.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)
	}
	if err != nil {
		return tier, fmt.Errorf("failed to construct logger: %v", err)
	}
	_ = zap.ReplaceGlobals(logger)
	logger = logger.With(zap.String("service", args.ServiceName))

	counts := args.TopKCounts
	if len(counts) == 0 {
		counts = DefaultTopKCounts
	}
	// callers may reuse the args slice
	counts = append([]uint32(nil), counts...)

	optionsCache, err := pcache.NewPCache("options", args.OptionsCacheMaxCost, args.OptionsCacheAvgCost)
	if err != nil {
		return tier, fmt.Errorf("failed to create options cache: %v", err)
	}
	logger.Info("tier created", zap.Any("topk_counts", counts), zap.Int64("options_cache_max_cost", args.OptionsCacheMaxCost))

	return Tier{
		Logger:       logger,
		TopKCounts:   counts,
		OptionsCache: optionsCache,
		Args:         *args,
	}, nil
}

// cachedOptions is an options cache entry. The columns are kept to tell apart
// schemas whose fingerprints collide.
type cachedOptions struct {
	columns []schema.Column
	options aggregate.Options
}

// Options returns the dropdown options for columns, generating them on a cache
// miss. The result is the caller's to modify.
func (t Tier) Options(columns []schema.Column) aggregate.Options {
	key := schema.Fingerprint(columns, t.TopKCounts)
	if v, ok := t.OptionsCache.Get(key); ok {
		entry, ok := v.(cachedOptions)
		switch {
		case !ok:
			t.Logger.Warn("unexpected value in options cache", zap.Uint64("key", key))
		case !sameColumns(entry.columns, columns):
			t.Logger.Debug("options cache fingerprint collision", zap.Uint64("key", key))
		default:
			return entry.options.Clone()
		}
	}
	options := aggregate.NewOptions(columns, t.TopKCounts)
	entry := cachedOptions{
		columns: append([]schema.Column{}, columns...),
		options: options.Clone(),
	}
	if !t.OptionsCache.SetWithTTL(key, entry, optionsCost(options), t.Args.OptionsCacheTTL) {
		t.Logger.Debug("options cache dropped set", zap.Uint64("key", key), zap.Int("columns", len(columns)))
	}
	return options
}

func sameColumns(a, b []schema.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t Tier) Close() {
	t.OptionsCache.Close()
	_ = t.Logger.Sync()
}

// optionsCost approximates the bytes held by options.
func optionsCost(options aggregate.Options) int64 {
	var cost int64
	for _, group := range [][]aggregate.Option{options.TopLevel, options.Uniq, options.TopKCounts, options.TopKValues} {
		for _, opt := range group {
			cost += int64(len(opt.Value) + len(opt.Label))
		}
	}
	return cost
}
