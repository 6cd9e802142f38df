package analyzer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrorLabel is the sentinel diagnosis recorded when inference fails for an
// image. It is never a knowledge base key.
const ErrorLabel = "Error"

// classNames lists the diagnosis labels in the model's output order; the
// index of a label matches the position of its logit. Spellings follow the
// training label set.
var classNames = [...]string{
	"Nil control",
	"condensing osteitis",
	"diffuse lesion",
	"periapical abcess",
	"periapical granuloma",
	"periapical widening",
	"pericoronitis",
	"radicular cyst",
}

// NumClasses is the size of the classification head.
const NumClasses = len(classNames)

// Labels returns the known diagnosis labels in model output order.
func Labels() []string {
	out := make([]string, NumClasses)
	copy(out, classNames[:])
	return out
}

// Prediction pairs a diagnosis label with its softmax confidence.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

// PredictionResult is the ranked top-k output for a single image, highest
// confidence first. It is immutable after creation.
type PredictionResult []Prediction

// Primary returns the highest-confidence prediction.
func (r PredictionResult) Primary() (Prediction, bool) {
	if len(r) == 0 {
		return Prediction{}, false
	}
	return r[0], true
}

// Failed reports whether the result is the synthetic fallback recorded for a
// failed task.
func (r PredictionResult) Failed() bool {
	p, ok := r.Primary()
	return !ok || p.Label == ErrorLabel
}

// ErrorResult returns the fallback result delivered through the completion
// path when a task fails, so completion bookkeeping stays consistent.
func ErrorResult() PredictionResult {
	return PredictionResult{{Label: ErrorLabel, Confidence: 0}}
}

// Case is one analyzed image together with its prediction and the display
// text derived from the primary diagnosis.
type Case struct {
	ID              string           `json:"id"`
	ImagePath       string           `json:"imagePath"`
	Result          PredictionResult `json:"result"`
	Failed          bool             `json:"failed"`
	AnalyzedAt      time.Time        `json:"analyzedAt"`
	Findings        []Finding        `json:"findings,omitempty"`
	Recommendations []Finding        `json:"recommendations,omitempty"`
	Management      ManagementPlan   `json:"management,omitempty"`
}

// NewCase builds the Case for a completed task, resolving knowledge base
// text for the primary diagnosis. Failed results yield a marker Case with
// empty display text.
func NewCase(imagePath string, result PredictionResult) Case {
	c := Case{
		ID:         uuid.NewString(),
		ImagePath:  imagePath,
		Result:     result,
		Failed:     result.Failed(),
		AnalyzedAt: time.Now(),
	}
	if c.Failed {
		return c
	}
	primary, _ := result.Primary()
	c.Findings = FindingsFor(primary.Label)
	c.Recommendations = RecommendationsFor(primary.Label)
	c.Management = ManagementFor(primary.Label)
	return c
}

// PrimaryLabel returns the raw primary diagnosis label, or ErrorLabel for a
// failed Case.
func (c Case) PrimaryLabel() string {
	p, ok := c.Result.Primary()
	if !ok {
		return ErrorLabel
	}
	return p.Label
}

// Confidence returns the primary diagnosis confidence in [0,1].
func (c Case) Confidence() float32 {
	p, _ := c.Result.Primary()
	return p.Confidence
}

// TitleLabel renders a diagnosis label for display, capitalizing each word
// ("periapical abcess" becomes "Periapical Abcess").
func TitleLabel(label string) string {
	return cases.Title(language.English).String(label)
}

// EngineConfig wraps the ONNX Runtime settings for the classifier.
type EngineConfig struct {
	OrtLib         string `json:"ortLib"`
	ModelPath      string `json:"modelPath"`
	IntraOpThreads int    `json:"intraOpThreads"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Engine      EngineConfig `json:"engine"`
	TopK        int          `json:"topK"`
	ReportTitle string       `json:"reportTitle"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.TopK > NumClasses {
		c.TopK = NumClasses
	}
	if c.Engine.ModelPath == "" {
		c.Engine.ModelPath = "dental_classifier.onnx"
	}
	if c.ReportTitle == "" {
		c.ReportTitle = "DentAI Pro - Dental X-Ray Analysis Report"
	}
}
