package hierdiff

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/hierarchy"
)

// AttrRobustness is the node attribute written by the robustness pass.
const AttrRobustness = "robustness"

// DefaultThreshold is the Jaccard threshold used when Options.Threshold is
// unset. It matches the documented bootstrap workflow.
const DefaultThreshold = 0.4

// Options configures a robustness computation. The zero value is usable
// after ValidateAndSetDefaults; engines never consult process-wide state,
// so concurrent batches with different options are safe.
type Options struct {
	// Threshold is the inclusive Jaccard acceptance threshold.
	Threshold float64

	// Workers bounds the parallel per-alternative workers.
	// Defaults to the number of CPUs.
	Workers int

	// Aligner overrides the matching algorithm. Defaults to a
	// JaccardAligner at Threshold.
	Aligner Aligner

	// Logger receives per-alternative progress and skip warnings.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults applies defaults. Idempotent.
func (o *Options) ValidateAndSetDefaults() {
	if o.validated {
		return
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Aligner == nil {
		o.Aligner = JaccardAligner{Threshold: o.Threshold}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
}

// SkipRecord notes an alternative hierarchy that could not be loaded.
// Skipped alternatives are excluded from the effective N rather than
// counted as non-matches.
type SkipRecord struct {
	Path string
	Err  error
}

// Result is the outcome of a robustness computation.
type Result struct {
	// Hierarchy is the reference hierarchy with a "robustness" attribute
	// written onto every node. Alternatives are never mutated.
	Hierarchy *hierarchy.Hierarchy

	// Requested is the number of alternatives asked for; EffectiveN is the
	// number that loaded successfully and entered the denominator.
	Requested  int
	EffectiveN int

	// Skipped records the alternatives excluded from EffectiveN.
	Skipped []SkipRecord
}

// Robustness scores every node of the reference hierarchy by the fraction
// of alternative hierarchies containing a node whose member set clears the
// Jaccard threshold:
//
//	robustness(R) = (#alternatives with a match for R) / N
//
// with N fixed at len(alts). Each alternative is aligned independently on
// a bounded worker pool; per-alternative match vectors are merged in a
// reduction step, so workers share no mutable state. The reference
// hierarchy is annotated in place and returned.
func Robustness(ctx context.Context, ref *hierarchy.Hierarchy, alts []*hierarchy.Hierarchy, opts Options) *Result {
	opts.ValidateAndSetDefaults()

	refIDs := ref.NodeIDs()
	refMembers := make([][]string, len(refIDs))
	for i, id := range refIDs {
		refMembers[i] = ref.Members(id)
	}

	counts := make([]int, len(refIDs))
	if len(alts) > 0 {
		for matched := range alignAll(ctx, refMembers, alts, opts) {
			for i, ok := range matched {
				if ok {
					counts[i]++
				}
			}
		}
	}

	n := len(alts)
	for i, id := range refIDs {
		node, _ := ref.Node(id)
		score := 0.0
		if n > 0 {
			score = float64(counts[i]) / float64(n)
		}
		node.Attr[AttrRobustness] = score
	}

	return &Result{Hierarchy: ref, Requested: n, EffectiveN: n}
}

// alignAll fans the alternatives out over opts.Workers goroutines, each
// producing a match vector for the full reference node list (map step).
// The returned channel closes once every alternative has been aligned.
func alignAll(ctx context.Context, refMembers [][]string, alts []*hierarchy.Hierarchy, opts Options) <-chan []bool {
	jobs := make(chan *hierarchy.Hierarchy)
	results := make(chan []bool, len(alts))

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for alt := range jobs {
				results <- alignOne(refMembers, alt, opts.Aligner)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, alt := range alts {
			select {
			case jobs <- alt:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// alignOne computes the per-reference-node match vector against a single
// alternative hierarchy.
func alignOne(refMembers [][]string, alt *hierarchy.Hierarchy, aligner Aligner) []bool {
	idx := NewIndex(alt)
	matched := make([]bool, len(refMembers))
	for i, members := range refMembers {
		_, ok := aligner.BestMatch(members, idx)
		matched[i] = ok
	}
	return matched
}

// RobustnessFromFiles loads the reference hierarchy and each alternative
// with the given codec, then runs Robustness over the alternatives that
// loaded.
//
// A failure to load the reference is fatal; a failure on an individual
// alternative is recorded as a SkipRecord, logged, and excluded from the
// effective N. The computation proceeds with whatever loaded, so a batch
// with some corrupt bootstrap outputs still produces a valid result.
func RobustnessFromFiles(ctx context.Context, c codec.Codec, refPath string, altPaths []string, opts Options) (*Result, error) {
	opts.ValidateAndSetDefaults()

	ref, err := c.Load(refPath)
	if err != nil {
		return nil, err
	}

	var alts []*hierarchy.Hierarchy
	var skipped []SkipRecord
	for _, path := range altPaths {
		alt, err := c.Load(path)
		if err != nil {
			opts.Logger.Warn("skipping alternative hierarchy", "path", path, "err", err)
			skipped = append(skipped, SkipRecord{Path: path, Err: err})
			continue
		}
		alts = append(alts, alt)
	}

	result := Robustness(ctx, ref, alts, opts)
	result.Requested = len(altPaths)
	result.Skipped = skipped
	return result, nil
}
