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

// Package report turns the result log of a run into the persisted report document.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/caas-team/verdict/internal/logger"
	"github.com/caas-team/verdict/pkg/checks"
	"github.com/caas-team/verdict/pkg/db"
)

// Report is the persisted document of a run.
type Report struct {
	Timestamp time.Time        `json:"timestamp" yaml:"timestamp"`
	Summary   db.RunSummary    `json:"summary" yaml:"summary"`
	Results   []checks.Outcome `json:"test_results" yaml:"test_results"`
}

// New builds a report snapshot from the result log.
func New(ts time.Time, results db.DB) Report {
	list := results.List()
	return Report{
		Timestamp: ts,
		// derived from the same snapshot as Results so both always agree
		Summary: db.Summarize(list),
		Results: list,
	}
}

// Emitter persists the final state of a run.
type Emitter interface {
	// Emit writes the report and returns it. The returned report is valid
	// even if the error is non-nil.
	Emit(ctx context.Context, results db.DB) (Report, error)
}

// Encoder writes a report in a specific format
type Encoder func(w io.Writer, r Report) error

// EncodeJSON writes the report as indented UTF-8 JSON
func EncodeJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// EncodeYAML writes the report as YAML
func EncodeYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// OutcomeValidator is implemented by emitters that can tell up front
// whether a single outcome would make the report unwritable.
type OutcomeValidator interface {
	Validate(outcome checks.Outcome) error
}

// ValidateOutcome checks that the outcome can be encoded with enc and as JSON,
// the format the report API always serves.
func ValidateOutcome(enc Encoder, outcome checks.Outcome) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("outcome %q cannot be encoded: %v", outcome.Name(), v)
		}
	}()
	if _, err = json.Marshal(outcome); err != nil {
		return err
	}
	if enc == nil {
		return nil
	}
	return enc(io.Discard, Report{Results: []checks.Outcome{outcome}})
}

// EncoderFor returns the encoder for the given format name
func EncoderFor(format string) (Encoder, error) {
	switch format {
	case "", "json":
		return EncodeJSON, nil
	case "yaml":
		return EncodeYAML, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

var (
	_ Emitter          = (*FileEmitter)(nil)
	_ OutcomeValidator = (*FileEmitter)(nil)
)

// FileEmitter writes the report to a file.
type FileEmitter struct {
	path   string
	encode Encoder
	now    func() time.Time
}

// NewFileEmitter creates an emitter writing to path with the given encoder.
// A nil encoder falls back to JSON.
func NewFileEmitter(path string, encode Encoder) *FileEmitter {
	if encode == nil {
		encode = EncodeJSON
	}
	return &FileEmitter{path: path, encode: encode, now: time.Now}
}

// Path returns the destination of the report
func (f *FileEmitter) Path() string {
	return f.path
}

// Validate checks that the outcome can be written by this emitter
func (f *FileEmitter) Validate(outcome checks.Outcome) error {
	return ValidateOutcome(f.encode, outcome)
}

// Emit writes the report atomically: it is encoded into a temporary file in the
// target directory which then replaces the destination.
func (f *FileEmitter) Emit(ctx context.Context, results db.DB) (Report, error) {
	log := logger.FromContext(ctx)
	r := New(f.now(), results)

	var buf bytes.Buffer
	if err := f.encode(&buf, r); err != nil {
		log.ErrorContext(ctx, "Failed to encode report", "error", err)
		return r, fmt.Errorf("failed to encode report: %w", err)
	}

	if err := writeFileAtomic(f.path, buf.Bytes()); err != nil {
		log.ErrorContext(ctx, "Failed to write report", "path", f.path, "error", err)
		return r, err
	}
	log.InfoContext(ctx, "Test report saved", "path", f.path, "results", len(r.Results))
	return r, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // reports are meant to be read by the pipeline
		return fmt.Errorf("failed to set report file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move report file into place: %w", err)
	}
	return nil
}

// Load reads a report written by a FileEmitter. The format is
// chosen by the file extension, JSON unless it ends in .yaml or .yml.
func Load(path string) (Report, error) {
	b, err := os.ReadFile(path) //nolint:gosec // path is user provided on purpose
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &r)
	default:
		err = json.Unmarshal(b, &r)
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse report: %w", err)
	}
	return r, nil
}
