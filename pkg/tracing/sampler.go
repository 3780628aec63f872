package tracing

import (
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/sdk/trace"
)

// samplers 键同时接受配置中的 sampling_type 与 OTEL_TRACES_SAMPLER 的取值
var samplers = map[string]func(ratio float64) trace.Sampler{
	"always":    func(float64) trace.Sampler { return trace.AlwaysSample() },
	"always_on": func(float64) trace.Sampler { return trace.AlwaysSample() },

	"never":      func(float64) trace.Sampler { return trace.NeverSample() },
	"always_off": func(float64) trace.Sampler { return trace.NeverSample() },

	"ratio":        trace.TraceIDRatioBased,
	"traceidratio": trace.TraceIDRatioBased,

	"parent_based":             parentRatio,
	"parentbased_traceidratio": parentRatio,
	"parentbased_always_on":    func(float64) trace.Sampler { return trace.ParentBased(trace.AlwaysSample()) },
	"parentbased_always_off":   func(float64) trace.Sampler { return trace.ParentBased(trace.NeverSample()) },
}

func parentRatio(ratio float64) trace.Sampler {
	return trace.ParentBased(trace.TraceIDRatioBased(ratio))
}

// newSampler 环境变量优先于配置，未知策略按 parent_based 处理
func newSampler(cfg *Config) trace.Sampler {
	name, ratio := cfg.SamplingType, cfg.SamplingRate
	if env := os.Getenv("OTEL_TRACES_SAMPLER"); env != "" {
		name, ratio = env, envRatio()
	}
	build, ok := samplers[strings.ToLower(name)]
	if !ok {
		build = parentRatio
	}
	return build(ratio)
}

// envRatio OTEL_TRACES_SAMPLER_ARG，缺失或越界时为 1
func envRatio() float64 {
	ratio, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1
	}
	return ratio
}
