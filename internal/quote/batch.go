package quote

import (
	"bytes"
	"fmt"
	"io"

	"github.com/iwvelando/installment-plans/pkg/constants"
	"gopkg.in/yaml.v3"
)

// BatchFile is the YAML layout accepted for batch quoting.
type BatchFile struct {
	Requests []Request `yaml:"requests" json:"requests"`
}

// ParseBatch decodes a YAML (or JSON) batch document from r.
func ParseBatch(r io.Reader) ([]Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBatch
	}

	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if len(file.Requests) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(file.Requests) > constants.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d requests, limit is %d", ErrBatchTooLarge, len(file.Requests), constants.MaxBatchSize)
	}
	return file.Requests, nil
}
