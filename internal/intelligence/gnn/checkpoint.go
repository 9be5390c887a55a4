package gnn

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/solubility-bench/internal/intelligence/featurize"
	"github.com/turtacn/solubility-bench/internal/intelligence/nn"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// CheckpointVersion is bumped whenever the on-disk layout changes.
const CheckpointVersion = 2

// Checkpoint is the serialised form of a trained model.  Featurizer records
// the options the training graphs were built with; inputs featurized any
// other way are not valid for the restored model.
type Checkpoint struct {
	Version    int                    `json:"version"`
	Config     ModelConfig            `json:"config"`
	Featurizer featurize.Options      `json:"featurizer"`
	CreatedAt  time.Time              `json:"created_at"`
	Params     map[string]ParamMatrix `json:"params"`
}

// ParamMatrix is a row-major parameter value.
type ParamMatrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// NewCheckpoint snapshots the parameters of m trained on graphs built with
// opts.
func NewCheckpoint(m Model, opts featurize.Options) *Checkpoint {
	ck := &Checkpoint{
		Version:    CheckpointVersion,
		Config:     m.Config(),
		Featurizer: opts,
		CreatedAt:  time.Now().UTC(),
		Params:     make(map[string]ParamMatrix),
	}
	for _, p := range m.Parameters() {
		r, c := p.Dims()
		data := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			data = append(data, p.Value.RawRowView(i)...)
		}
		ck.Params[p.Name] = ParamMatrix{Rows: r, Cols: c, Data: data}
	}
	return ck
}

// Restore builds a model from the checkpoint on device.  Every parameter of
// the rebuilt architecture must be present with a matching shape.
func (ck *Checkpoint) Restore(device nn.Device) (Model, error) {
	if ck.Version != CheckpointVersion {
		return nil, errors.Newf(errors.ErrCodeModelCheckpointFailed,
			"checkpoint version %d, want %d", ck.Version, CheckpointVersion)
	}
	m, err := New(ck.Config, device)
	if err != nil {
		return nil, err
	}
	for _, p := range m.Parameters() {
		pm, ok := ck.Params[p.Name]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeModelCheckpointFailed, "parameter %q missing", p.Name)
		}
		r, c := p.Dims()
		if pm.Rows != r || pm.Cols != c || len(pm.Data) != r*c {
			return nil, errors.Newf(errors.ErrCodeModelCheckpointFailed,
				"parameter %q is %dx%d, want %dx%d", p.Name, pm.Rows, pm.Cols, r, c)
		}
		p.Value.Copy(mat.NewDense(r, c, append([]float64(nil), pm.Data...)))
	}
	m.Eval()
	return m, nil
}

// CheckFeaturizer fails unless opts match the options the model was trained
// with.
func (ck *Checkpoint) CheckFeaturizer(opts featurize.Options) error {
	if ck.Featurizer == opts {
		return nil
	}
	return errors.Newf(errors.ErrCodeModelConfigInvalid,
		"%s checkpoint was trained with radius=%d n_bits=%d symmetric_edges=%t, featurizer has radius=%d n_bits=%d symmetric_edges=%t",
		ck.Config.Kind, ck.Featurizer.Radius, ck.Featurizer.NBits, ck.Featurizer.SymmetricEdges,
		opts.Radius, opts.NBits, opts.SymmetricEdges)
}

// SaveCheckpoint writes m and its featurizer options as JSON.
func SaveCheckpoint(w io.Writer, m Model, opts featurize.Options) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(NewCheckpoint(m, opts)); err != nil {
		return errors.Wrap(err, errors.ErrCodeModelCheckpointFailed, "failed to encode checkpoint")
	}
	return nil
}

// LoadCheckpoint reads a JSON checkpoint and restores it on device.  The
// returned model is in eval mode.
func LoadCheckpoint(r io.Reader, device nn.Device) (Model, error) {
	ck, err := DecodeCheckpoint(r)
	if err != nil {
		return nil, err
	}
	return ck.Restore(device)
}

// DecodeCheckpoint reads a JSON checkpoint without restoring it.
func DecodeCheckpoint(r io.Reader) (*Checkpoint, error) {
	var ck Checkpoint
	if err := json.NewDecoder(r).Decode(&ck); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelCheckpointFailed, "failed to decode checkpoint")
	}
	return &ck, nil
}

// LoadCheckpointFile opens path and calls LoadCheckpoint.
func LoadCheckpointFile(path string, device nn.Device) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelCheckpointFailed, "failed to open checkpoint").
			WithDetailf("path=%s", path)
	}
	defer f.Close()
	return LoadCheckpoint(f, device)
}

//Personal.AI order the ending
