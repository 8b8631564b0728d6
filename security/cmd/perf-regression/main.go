// Command perf-regression compares two `go test -bench` outputs and fails
// when a tracked token benchmark regressed past the threshold.
//
//	go test -run '^$' -bench 'Engine' -count 6 . > new.txt
//	go run ./security/cmd/perf-regression -baseline old.txt -candidate new.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

const defaultThreshold = 0.30

// RS256 signing dominates issuance cost; verification should stay far cheaper.
var defaultTracked = map[string][]string{
	"BenchmarkEngineSign":     {"ns/op", "allocs/op"},
	"BenchmarkEngineVerify":   {"ns/op", "allocs/op"},
	"BenchmarkEngineValidate": {"ns/op", "allocs/op"},
}

type sampleSet map[string]map[string][]float64

type comparison struct {
	benchmark string
	metric    string
	baseline  float64
	candidate float64
	delta     float64
	err       string
}

func main() {
	var (
		baselinePath  string
		candidatePath string
		threshold     float64
		only          string
	)

	flag.StringVar(&baselinePath, "baseline", "", "path to baseline benchmark output")
	flag.StringVar(&candidatePath, "candidate", "", "path to candidate benchmark output")
	flag.Float64Var(&threshold, "threshold", defaultThreshold, "maximum allowed regression ratio (0.30 = +30%)")
	flag.StringVar(&only, "only", "", "comma-separated benchmark names to check instead of the default set")
	flag.Parse()

	if baselinePath == "" || candidatePath == "" {
		fmt.Fprintln(os.Stderr, "-baseline and -candidate are required")
		os.Exit(2)
	}
	if threshold < 0 {
		fmt.Fprintln(os.Stderr, "-threshold must be >= 0")
		os.Exit(2)
	}

	tracked := trackedSet(only)

	baseline, err := parseBenchmarkFile(baselinePath, tracked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse baseline: %v\n", err)
		os.Exit(1)
	}
	candidate, err := parseBenchmarkFile(candidatePath, tracked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse candidate: %v\n", err)
		os.Exit(1)
	}

	results := compare(tracked, baseline, candidate)
	printResults(os.Stdout, results)

	if failures := regressions(results, threshold); len(failures) > 0 {
		fmt.Fprintln(os.Stderr, "performance regression threshold exceeded:")
		for _, failure := range failures {
			fmt.Fprintf(os.Stderr, "  - %s\n", failure)
		}
		os.Exit(1)
	}
}

func trackedSet(only string) map[string][]string {
	if only == "" {
		return defaultTracked
	}
	out := map[string][]string{}
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if metrics, ok := defaultTracked[name]; ok {
			out[name] = metrics
		} else {
			out[name] = []string{"ns/op"}
		}
	}
	return out
}

func compare(tracked map[string][]string, baseline, candidate sampleSet) []comparison {
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []comparison
	for _, name := range names {
		for _, metric := range tracked[name] {
			c := comparison{benchmark: name, metric: metric}
			baseSamples := baseline[name][metric]
			candidateSamples := candidate[name][metric]
			switch {
			case len(baseSamples) == 0 || len(candidateSamples) == 0:
				c.err = "missing samples"
			default:
				c.baseline = median(baseSamples)
				c.candidate = median(candidateSamples)
				if c.baseline <= 0 {
					// allocs/op of zero on both sides is not a regression.
					if c.candidate > 0 {
						c.delta = 1
					}
					break
				}
				c.delta = (c.candidate - c.baseline) / c.baseline
			}
			out = append(out, c)
		}
	}
	return out
}

func regressions(results []comparison, threshold float64) []string {
	var failures []string
	for _, r := range results {
		if r.err != "" {
			failures = append(failures, fmt.Sprintf("%s %s: %s", r.benchmark, r.metric, r.err))
			continue
		}
		if r.delta > threshold {
			failures = append(failures, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", r.benchmark, r.metric, r.delta*100, threshold*100))
		}
	}
	return failures
}

func printResults(w io.Writer, results []comparison) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "benchmark\tmetric\tbaseline\tcandidate\tdelta")
	for _, r := range results {
		if r.err != "" {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t%s\n", r.benchmark, r.metric, r.err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%+0.2f%%\n", r.benchmark, r.metric, r.baseline, r.candidate, r.delta*100)
	}
	_ = tw.Flush()
}

func parseBenchmarkFile(path string, tracked map[string][]string) (sampleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseBenchmarks(file, tracked)
}

func parseBenchmarks(r io.Reader, tracked map[string][]string) (sampleSet, error) {
	samples := sampleSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		name := normalizeBenchmarkName(fields[0])
		if _, ok := tracked[name]; !ok {
			continue
		}

		if _, ok := samples[name]; !ok {
			samples[name] = map[string][]float64{}
		}

		for i := 2; i+1 < len(fields); i += 2 {
			value, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			unit := fields[i+1]
			samples[name][unit] = append(samples[name][unit], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

func normalizeBenchmarkName(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	copied := make([]float64, len(values))
	copy(copied, values)
	sort.Float64s(copied)

	mid := len(copied) / 2
	if len(copied)%2 == 1 {
		return copied[mid]
	}
	return (copied[mid-1] + copied[mid]) / 2
}
