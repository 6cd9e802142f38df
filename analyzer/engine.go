package analyzer

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Predictor exposes the minimal inference surface the batch controller
// consumes. Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, imagePath string, topK int) (PredictionResult, error)
}

// Engine runs the pretrained dental classifier through ONNX Runtime. The
// session holds no per-call mutable state after load, so Predict may be
// called from multiple goroutines.
type Engine struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	modelPath  string
	logger     *log.Logger

	mu     sync.RWMutex
	closed bool
}

// LoadEngine initializes the ONNX Runtime environment if needed, validates
// the model graph against the expected architecture and opens a session.
// Any failure is reported as *ModelLoadError. The runtime environment stays
// alive for the remainder of the process.
func LoadEngine(cfg EngineConfig, logger *log.Logger) (*Engine, error) {
	if cfg.ModelPath == "" {
		return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("model path is empty"))
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, NewModelLoadError(cfg.ModelPath, err)
	}
	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(resolveOrtLib(cfg.OrtLib))
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("initialize onnxruntime: %w", err))
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("read model graph: %w", err))
	}
	if err := validateModelIO(inputs, outputs); err != nil {
		return nil, NewModelLoadError(cfg.ModelPath, err)
	}

	var opts *ort.SessionOptions
	if cfg.IntraOpThreads > 0 {
		opts, err = ort.NewSessionOptions()
		if err != nil {
			return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("session options: %w", err))
		}
		defer opts.Destroy()
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("session options: %w", err))
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, NewModelLoadError(cfg.ModelPath, fmt.Errorf("open session: %w", err))
	}

	e := &Engine{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		modelPath:  cfg.ModelPath,
		logger:     logger,
	}
	logf(logger, "model loaded: %s (input %q, output %q)", cfg.ModelPath, e.inputName, e.outputName)
	return e, nil
}

// validateModelIO rejects models whose graph does not expose the expected
// classifier tensors: one float32 input [N,3,224,224] and one float32
// output [N,8].
func validateModelIO(inputs, outputs []ort.InputOutputInfo) error {
	if len(inputs) != 1 {
		return fmt.Errorf("model declares %d inputs, want 1", len(inputs))
	}
	if len(outputs) != 1 {
		return fmt.Errorf("model declares %d outputs, want 1", len(outputs))
	}
	in, out := inputs[0], outputs[0]
	if in.OrtValueType != ort.ONNXTypeTensor || in.DataType != ort.TensorElementDataTypeFloat {
		return fmt.Errorf("input %q is not a float32 tensor", in.Name)
	}
	if !matchDims(in.Dimensions, []int64{-1, 3, inputSize, inputSize}) {
		return fmt.Errorf("input %q has shape %v, want [N 3 %d %d]", in.Name, in.Dimensions, inputSize, inputSize)
	}
	if out.OrtValueType != ort.ONNXTypeTensor || out.DataType != ort.TensorElementDataTypeFloat {
		return fmt.Errorf("output %q is not a float32 tensor", out.Name)
	}
	if !matchDims(out.Dimensions, []int64{-1, int64(NumClasses)}) {
		return fmt.Errorf("output %q has shape %v, want [N %d]", out.Name, out.Dimensions, NumClasses)
	}
	return nil
}

// matchDims compares a declared shape against a template; template entries
// below zero accept any value (dynamic axes).
func matchDims(got ort.Shape, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if want[i] < 0 {
			continue
		}
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// resolveOrtLib picks the ONNX Runtime shared library path. An empty value
// falls back to the platform's conventional library name.
func resolveOrtLib(explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}

// ModelPath returns the path of the loaded model artifact.
func (e *Engine) ModelPath() string {
	if e == nil {
		return ""
	}
	return e.modelPath
}

// Close releases the session. In-flight Predict calls finish first.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
		e.session = nil
	}
	return nil
}

// Predict classifies one image and returns the top-k diagnoses sorted by
// descending confidence. Failures are reported as *InferenceError; decode
// failures additionally match ErrImageDecode.
func (e *Engine) Predict(ctx context.Context, imagePath string, topK int) (PredictionResult, error) {
	if e == nil {
		return nil, ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, NewInferenceError(imagePath, err)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed || e.session == nil {
		return nil, ErrEngineClosed
	}

	data, err := PreprocessImage(imagePath)
	if err != nil {
		return nil, NewInferenceError(imagePath, err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, inputSize, inputSize), data)
	if err != nil {
		return nil, NewInferenceError(imagePath, fmt.Errorf("create input tensor: %w", err))
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(NumClasses)))
	if err != nil {
		return nil, NewInferenceError(imagePath, fmt.Errorf("create output tensor: %w", err))
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, NewInferenceError(imagePath, fmt.Errorf("run session: %w", err))
	}

	logits := make([]float32, NumClasses)
	copy(logits, output.GetData())
	return Rank(logits, topK), nil
}

// Rank applies softmax over the class logits and returns the top-k
// predictions sorted by descending confidence; ties keep class index order.
// k is clamped to [1, len(logits)].
func Rank(logits []float32, topK int) PredictionResult {
	if len(logits) == 0 {
		return nil
	}
	if len(logits) > NumClasses {
		logits = logits[:NumClasses]
	}
	k := topK
	if k < 1 {
		k = 1
	}
	if k > len(logits) {
		k = len(logits)
	}
	probs := softmax(logits)
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})
	out := make(PredictionResult, 0, k)
	for _, i := range idx[:k] {
		out = append(out, Prediction{Label: classNames[i], Confidence: probs[i]})
	}
	return out
}

// softmax computes class probabilities from raw logits, accumulating in
// float64 for stability.
func softmax(logits []float32) []float32 {
	maxv := float64(logits[0])
	for _, v := range logits[1:] {
		if fv := float64(v); fv > maxv {
			maxv = fv
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		exps[i] = math.Exp(float64(v) - maxv)
		sum += exps[i]
	}
	probs := make([]float32, len(logits))
	for i := range exps {
		probs[i] = float32(exps[i] / sum)
	}
	return probs
}
