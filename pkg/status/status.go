// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"
)

// 📊 Counts is a point in time copy of a Tally
type Counts struct {
	Dirs    int64
	Files   int64
	Concats int64
	Lazy    int64
}

// 📈 Tally holds the run counters
type Tally struct {
	dirs    atomic.Int64
	files   atomic.Int64
	concats atomic.Int64
	lazy    atomic.Int64

	metrics *metrics
}

type metrics struct {
	dirs    prometheus.Counter
	files   prometheus.Counter
	concats prometheus.Counter
	lazy    prometheus.Counter
}

// 🏭 NewTally creates a tally. With a non-nil registerer every increment also lands in prometheus.
func NewTally(reg prometheus.Registerer) (*Tally, error) {
	t := &Tally{}
	if reg == nil {
		return t, nil
	}

	m := &metrics{}
	var err error
	if m.dirs, err = register(reg, "directories_created_total", "Directories created by transfo runs."); err != nil {
		return nil, err
	}
	if m.files, err = register(reg, "files_written_total", "Files written by transfo runs, copies and concatenations alike."); err != nil {
		return nil, err
	}
	if m.concats, err = register(reg, "concatenations_total", "Destinations produced by concatenating several sources."); err != nil {
		return nil, err
	}
	if m.lazy, err = register(reg, "lazy_skips_total", "Destinations left alone because they were newer than their sources."); err != nil {
		return nil, err
	}
	t.metrics = m
	return t, nil
}

// register reuses an already registered counter so several runs can share one registry
func register(reg prometheus.Registerer, name, help string) (prometheus.Counter, error) {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transfo",
		Name:      name,
		Help:      help,
	})
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
		}
		return nil, errors.Errorf("registering %s: %w", name, err)
	}
	return c, nil
}

// AddDir counts a created directory
func (t *Tally) AddDir() {
	t.dirs.Add(1)
	if t.metrics != nil {
		t.metrics.dirs.Inc()
	}
}

// AddFile counts a written file
func (t *Tally) AddFile() {
	t.files.Add(1)
	if t.metrics != nil {
		t.metrics.files.Inc()
	}
}

// AddConcat counts a concatenated destination
func (t *Tally) AddConcat() {
	t.concats.Add(1)
	if t.metrics != nil {
		t.metrics.concats.Inc()
	}
}

// AddLazy counts a destination skipped as up to date
func (t *Tally) AddLazy() {
	t.lazy.Add(1)
	if t.metrics != nil {
		t.metrics.lazy.Inc()
	}
}

// Counts returns the current values
func (t *Tally) Counts() Counts {
	return Counts{
		Dirs:    t.dirs.Load(),
		Files:   t.files.Load(),
		Concats: t.concats.Load(),
		Lazy:    t.lazy.Load(),
	}
}

// 🏁 Summary is the outcome of a run
type Summary struct {
	Counts
	Success  bool
	Err      error
	Duration time.Duration
}

// String returns the summary line
func (s Summary) String() string {
	return FormatSummary(s.Counts)
}

// 💾 WriteMetrics writes everything g gathers to path in the node exporter textfile format
func WriteMetrics(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
