// verdict
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
)

const (
	FramesProbeName = "FPS Simulation Test"
	targetFPS       = 60
	// share of the target frame rate that must be reached
	fpsTolerance = 0.8
)

var _ checks.Probe = (*Frames)(nil)

// Frames renders a number of simulated frames and checks the average frame rate.
type Frames struct {
	Count int
	// Work is the simulated render time of a frame
	Work time.Duration
}

// NewFrames creates the frame pacing probe with 100 frames of 1ms work each
func NewFrames() *Frames {
	return &Frames{Count: 100, Work: time.Millisecond}
}

func (*Frames) Name() string {
	return FramesProbeName
}

func (f *Frames) Run(ctx context.Context, env checks.Env) (checks.Outcome, error) {
	log := logger.FromContext(ctx)
	start := env.Start()
	target := time.Second / targetFPS

	var total time.Duration
	for i := 0; i < f.Count; i++ {
		frameStart := time.Now()
		if err := sleep(ctx, f.Work); err != nil {
			return checks.Outcome{}, err
		}
		frame := time.Since(frameStart)
		total += frame
		if frame > 2*target {
			log.WarnContext(ctx, "Slow frame", "frame", i, "took", frame, "target", target)
		}
	}

	var avg time.Duration
	var fps float64
	if f.Count > 0 {
		avg = total / time.Duration(f.Count)
	}
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}

	duration := env.Since(start)
	if fps >= targetFPS*fpsTolerance {
		return checks.Pass(FramesProbeName, duration, fmt.Sprintf("Average FPS: %.1f", fps), map[string]any{
			"fps":            fps,
			"avg_frame_time": avg.Seconds(),
		}), nil
	}
	return checks.Fail(FramesProbeName, duration, fmt.Sprintf("Low FPS: %.1f (target: %d)", fps, targetFPS), nil), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
