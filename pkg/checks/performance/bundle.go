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

	"github.com/caas-team/verdict/pkg/checks"
)

const (
	BundleProbeName = "Bundle Size Test"
	// assumed share of the size left after compression
	compressionRatio = 0.3
	// maximum compressed bundle size in bytes
	bundleBudget = 100000
)

// DefaultManifest lists the shipped files and their sizes in bytes
var DefaultManifest = map[string]int64{
	"index.html":         15000,
	"gameEngine.js":      85000,
	"blockSystem.js":     45000,
	"physicsSystem.js":   35000,
	"audioSystem.js":     25000,
	"inventorySystem.js": 30000,
	"dayNightSystem.js":  20000,
	"styles.css":         40000,
}

var _ checks.Probe = (*Bundle)(nil)

// Bundle checks the estimated compressed size of the shipped files.
type Bundle struct {
	Manifest map[string]int64
}

// NewBundle creates the bundle probe for the default manifest
func NewBundle() *Bundle {
	return &Bundle{Manifest: DefaultManifest}
}

func (*Bundle) Name() string {
	return BundleProbeName
}

func (b *Bundle) Run(_ context.Context, env checks.Env) (checks.Outcome, error) {
	start := env.Start()

	var total int64
	for f, size := range b.Manifest {
		if size < 0 {
			return checks.Outcome{}, fmt.Errorf("file %q has a negative size", f)
		}
		total += size
	}
	compressed := float64(total) * compressionRatio

	duration := env.Since(start)
	if compressed < bundleBudget {
		return checks.Pass(BundleProbeName, duration,
			fmt.Sprintf("Total size: %d bytes, compressed: %.0f bytes", total, compressed),
			map[string]any{"total_size": total, "compressed_size": compressed, "files": len(b.Manifest)}), nil
	}
	return checks.Fail(BundleProbeName, duration, fmt.Sprintf("Bundle too large: %.0f bytes", compressed), nil), nil
}
