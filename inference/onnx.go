package inference

import (
	"fmt"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"

	"goeval/game"
)

const featurePlanes = 3

// OnnxConfig describes one model binding. Device is the execution device
// identifier ("" for CPU, a CUDA device ordinal otherwise).
type OnnxConfig struct {
	Model    string
	Library  string // onnxruntime shared library path
	Device   string
	Size     int // board size the model was trained for
	MaxBatch int
}

// OnnxBackend evaluates positions with an onnxruntime session. Tensors are
// allocated once at the maximum batch size and reused; Infer is not safe
// for concurrent use and is expected to be driven by a single Batcher.
type OnnxBackend struct {
	cfg     OnnxConfig
	session *ort.AdvancedSession

	features []float32
	policy   []float32
	value    []float32
	inputs   []ort.Value
	outputs  []ort.Value
}

func NewOnnxBackend(cfg OnnxConfig) (*OnnxBackend, error) {
	if cfg.MaxBatch < 1 {
		cfg.MaxBatch = 1
	}
	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(cfg.Library)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	points := cfg.Size * cfg.Size
	features := make([]float32, cfg.MaxBatch*featurePlanes*points)
	policy := make([]float32, cfg.MaxBatch*(points+1))
	value := make([]float32, cfg.MaxBatch)

	featureShape := ort.NewShape(int64(cfg.MaxBatch), featurePlanes, int64(cfg.Size), int64(cfg.Size))
	policyShape := ort.NewShape(int64(cfg.MaxBatch), int64(points+1))
	valueShape := ort.NewShape(int64(cfg.MaxBatch), 1)

	featureTensor, err := ort.NewTensor(featureShape, features)
	if err != nil {
		return nil, fmt.Errorf("feature tensor: %w", err)
	}
	policyTensor, err := ort.NewTensor(policyShape, policy)
	if err != nil {
		return nil, fmt.Errorf("policy tensor: %w", err)
	}
	valueTensor, err := ort.NewTensor(valueShape, value)
	if err != nil {
		return nil, fmt.Errorf("value tensor: %w", err)
	}

	inputs := []ort.Value{featureTensor}
	outputs := []ort.Value{policyTensor, valueTensor}

	session, err := newSession(cfg, inputs, outputs)
	if err != nil {
		return nil, err
	}

	return &OnnxBackend{
		cfg:      cfg,
		session:  session,
		features: features,
		policy:   policy,
		value:    value,
		inputs:   inputs,
		outputs:  outputs,
	}, nil
}

// newSession tries CUDA when a device is configured, falling back to CPU.
func newSession(cfg OnnxConfig, inputs, outputs []ort.Value) (*ort.AdvancedSession, error) {
	inputNames := []string{"features"}
	outputNames := []string{"policy", "value"}

	if cfg.Device != "" {
		opts, err := ort.NewSessionOptions()
		if err != nil {
			return nil, fmt.Errorf("session options: %w", err)
		}
		cuda, err := ort.NewCUDAProviderOptions()
		if err == nil {
			if err = cuda.Update(map[string]string{"device_id": cfg.Device}); err == nil {
				err = opts.AppendExecutionProviderCUDA(cuda)
			}
			cuda.Destroy()
		}
		if err == nil {
			session, errS := ort.NewAdvancedSession(cfg.Model, inputNames, outputNames, inputs, outputs, opts)
			opts.Destroy()
			if errS == nil {
				log.Info().Msgf("inference: %s on CUDA device %s", cfg.Model, cfg.Device)
				return session, nil
			}
			err = errS
		} else {
			opts.Destroy()
		}
		log.Warn().Err(err).Msgf("inference: CUDA unavailable for %s, falling back to CPU", cfg.Model)
	}

	session, err := ort.NewAdvancedSession(cfg.Model, inputNames, outputNames, inputs, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", cfg.Model, err)
	}
	log.Info().Msgf("inference: %s on CPU", cfg.Model)
	return session, nil
}

func (o *OnnxBackend) Name() string {
	return o.cfg.Model
}

func (o *OnnxBackend) Infer(batch []*game.Position) ([]Result, error) {
	if len(batch) > o.cfg.MaxBatch {
		return nil, fmt.Errorf("batch of %d exceeds maximum %d", len(batch), o.cfg.MaxBatch)
	}
	points := o.cfg.Size * o.cfg.Size
	stride := featurePlanes * points

	for i, pos := range batch {
		if pos.Size() != o.cfg.Size {
			return nil, fmt.Errorf("position size %d does not match model size %d", pos.Size(), o.cfg.Size)
		}
		copy(o.features[i*stride:(i+1)*stride], pos.Features())
	}
	// Zero the tail so stale positions cannot bleed into the fixed batch.
	for i := len(batch) * stride; i < len(o.features); i++ {
		o.features[i] = 0
	}

	if err := o.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	results := make([]Result, len(batch))
	for i := range batch {
		policy := make([]float32, points+1)
		copy(policy, o.policy[i*(points+1):(i+1)*(points+1)])
		results[i] = Result{Policy: policy, Value: o.value[i]}
	}
	return results, nil
}

func (o *OnnxBackend) Close() error {
	o.session.Destroy()
	for _, v := range o.inputs {
		v.Destroy()
	}
	for _, v := range o.outputs {
		v.Destroy()
	}
	return nil
}
